package api

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yml
var embeddedRoutes []byte

type AuthLevel string

const (
	AuthNone     AuthLevel = "none"
	AuthUser     AuthLevel = "user"
	AuthDirector AuthLevel = "director"
)

// Route is one entry in the declarative route table. Handler names are bound
// to implementations by the router's registry.
type Route struct {
	Name    string    `yaml:"name"`
	Method  string    `yaml:"method"`
	Path    string    `yaml:"path"`
	Handler string    `yaml:"handler"`
	Auth    AuthLevel `yaml:"auth"`
}

type routesFile struct {
	Routes []Route `yaml:"routes"`
}

// LoadRoutes parses the route table, from path when given, otherwise from
// the embedded copy.
func LoadRoutes(path string) ([]Route, error) {
	data := embeddedRoutes
	if path != "" {
		loaded, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading routes file: %w", err)
		}
		data = loaded
	}

	var file routesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing routes: %w", err)
	}
	if len(file.Routes) == 0 {
		return nil, fmt.Errorf("route table is empty")
	}

	for i := range file.Routes {
		route := &file.Routes[i]
		if route.Name == "" || route.Method == "" || route.Path == "" || route.Handler == "" {
			return nil, fmt.Errorf("route %d is missing a required field", i)
		}
		switch route.Auth {
		case AuthNone, AuthUser, AuthDirector:
		case "":
			route.Auth = AuthNone
		default:
			return nil, fmt.Errorf("route %q has unknown auth level %q", route.Name, route.Auth)
		}
	}
	return file.Routes, nil
}
