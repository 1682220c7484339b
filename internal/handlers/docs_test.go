package handlers

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	_ "timeguard/docs"
	"timeguard/internal/service"

	"github.com/swaggo/swag"
)

var ginParam = regexp.MustCompile(`:([A-Za-z_]+)`)

func TestSwaggerDoc_MatchesRoutes(t *testing.T) {
	raw, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("swagger doc is not valid JSON: %v", err)
	}

	routed := make(map[string]bool)
	for _, rt := range newTestRouter(&service.Service{}).Routes() {
		if strings.HasPrefix(rt.Path, "/swagger") {
			continue
		}
		path := ginParam.ReplaceAllString(rt.Path, "{$1}")
		method := strings.ToLower(rt.Method)
		routed[method+" "+path] = true
		if _, ok := doc.Paths[path][method]; !ok {
			t.Errorf("route %s %s is not documented", rt.Method, path)
		}
	}
	for path, ops := range doc.Paths {
		for method := range ops {
			if !routed[method+" "+path] {
				t.Errorf("documented %s %s has no route", method, path)
			}
		}
	}
}
