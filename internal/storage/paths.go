package storage

import (
	"strings"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
)

// realRemotePath builds [root/][subfolder/]<id><ext>.
func realRemotePath(root, subfolder string, file *model.StoredFile) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{root, subfolder} {
		if p = strings.Trim(p, "/"); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, file.ID.String()+file.Extension)
	return strings.Join(parts, "/")
}
