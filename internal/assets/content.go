package assets

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/savaki/asset-deployer/internal/constants"
	"github.com/savaki/asset-deployer/internal/models"
)

// webTypes pins the common web extensions so uploads do not depend on the
// host's mime.types files
var webTypes = map[string]string{
	".css":   "text/css",
	".gif":   "image/gif",
	".htm":   "text/html",
	".html":  "text/html",
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".js":    "application/javascript",
	".json":  "application/json",
	".map":   "application/json",
	".mjs":   "application/javascript",
	".pdf":   "application/pdf",
	".png":   "image/png",
	".svg":   "image/svg+xml",
	".txt":   "text/plain",
	".wasm":  "application/wasm",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".xml":   "application/xml",
}

// ContentType picks the content type of name: extension lookup first, then the
// group default, then content sniffing when the group enables it, and finally
// application/octet-stream.
func ContentType(name string, group models.FileGroup, body []byte) string {
	if contentType := lookup(path.Ext(name)); contentType != "" {
		return contentType
	}
	if group.DefaultContentType != "" {
		return group.DefaultContentType
	}
	if group.DetectContentType && len(body) > 0 {
		return mimetype.Detect(body).String()
	}
	return constants.DefaultContentType
}

// lookup returns the bare media type for ext, without parameters such as charset
func lookup(ext string) string {
	ext = strings.ToLower(ext)
	if contentType, ok := webTypes[ext]; ok {
		return contentType
	}

	mediaType, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	if err != nil {
		return ""
	}
	return mediaType
}

// Key joins prefix and the relative path of a file into an object key.
// Back-slashes are treated as separators in both.
func Key(prefix, rel string) string {
	prefix = strings.ReplaceAll(prefix, `\`, "/")
	rel = strings.ReplaceAll(rel, `\`, "/")
	return path.Join(prefix, rel)
}
