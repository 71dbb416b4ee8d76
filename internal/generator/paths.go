package generator

import (
	"path"
	"strings"
)

const pageExtension = ".html"

// pageRoute turns a slug into a site-absolute route. Separators are kept so
// slugs may nest pages in sub-directories, but the route can never climb
// above the site root.
func pageRoute(slug string) string {
	slug = strings.ReplaceAll(strings.TrimSpace(slug), "\\", "/")
	clean := strings.Trim(path.Clean("/"+slug), "/")
	if clean == "" || clean == "." {
		return ""
	}
	return "/" + clean
}

// pageOutputPath is the file a route is written to, relative to the
// output directory.
func pageOutputPath(route string) string {
	return strings.TrimPrefix(route, "/") + pageExtension
}

// imageURL is the site-absolute URL of a copied image.
func imageURL(imagesDir, name string) string {
	return "/" + path.Join(strings.Trim(imagesDir, "/"), name)
}

// isRemoteURL reports whether an image lives outside the site and is left
// untouched.
func isRemoteURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
