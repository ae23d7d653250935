package service

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// idNamespace scopes the name-based UUIDs derived from file paths.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("paperlens:file"))

// PaperID derives the index id of a paper from its absolute path.
func PaperID(absPath string) string { return itemID("doc", absPath) }

// ImageID derives the index id of an image from its absolute path.
func ImageID(absPath string) string { return itemID("img", absPath) }

// itemID is <prefix>_<stem>_<uuid>. The UUID is version 5 over the cleaned
// absolute path, so the same file yields the same id in every run.
func itemID(prefix, absPath string) string {
	clean := filepath.Clean(absPath)
	stem := strings.TrimSuffix(filepath.Base(clean), filepath.Ext(clean))
	return prefix + "_" + stem + "_" + uuid.NewSHA1(idNamespace, []byte(clean)).String()
}
