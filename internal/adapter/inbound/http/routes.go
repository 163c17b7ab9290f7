package http

import (
	"strings"

	"github.com/wellman-connect/wellauth/internal/domain/route"
)

// appRoute is one entry in the navigable route table.
type appRoute struct {
	Name string
	Path string
	Meta route.Meta
}

// routeTable is the full set of navigable screens. Order matters only for
// the article prefix match; everything else is exact.
var routeTable = []appRoute{
	{Name: "home", Path: "/"},
	{Name: "resources", Path: "/resources"},
	{Name: "article", Path: "/article/"},
	{Name: "tools", Path: "/tools"},
	{Name: "appointments", Path: "/appointments"},
	{Name: route.NameSignup, Path: "/signup"},
	{Name: route.NameLogin, Path: "/login"},
	{Name: route.NameAccount, Path: "/account", Meta: route.Meta{RequiresAuth: true}},
	{Name: "profile", Path: "/profile", Meta: route.Meta{RequiresAuth: true}},
	{Name: "admin", Path: "/admin", Meta: route.Meta{RequiresAuth: true, RequiresAdmin: true}},
}

// matchRoute resolves a request path to a table entry. Article pages match
// by prefix (they carry an ID segment); everything else matches exactly.
func matchRoute(path string) (appRoute, bool) {
	for _, rt := range routeTable {
		if strings.HasSuffix(rt.Path, "/") && rt.Path != "/" {
			if strings.HasPrefix(path, rt.Path) {
				return rt, true
			}
			continue
		}
		if path == rt.Path {
			return rt, true
		}
	}
	return appRoute{}, false
}

// pathForRoute returns the path of the named route, falling back to "/".
func pathForRoute(name string) string {
	for _, rt := range routeTable {
		if rt.Name == name {
			return rt.Path
		}
	}
	return "/"
}
