package fields

import "strings"

// Photo folder assignments for bare filenames, keyed by what the field is.
const (
	FolderStudents string = "students"
	FolderTeachers string = "teachers"
	FolderLogos    string = "school-info/logos"
	FolderDefault  string = "school-info"
)

// ImageNormalizer rewrites stored photo/logo values into publicly servable
// URLs under the API base.
//
// Rules, in order:
//   - empty input stays empty
//   - absolute http(s) URLs pass through unchanged
//   - uploads/<folder>/<file> is rewritten to <base>/files/<folder>/<file>,
//     the second path segment naming the storage folder
//   - a bare filename is filed under the caller-supplied folder
//   - any other relative path gets the base and exactly one leading slash
type ImageNormalizer struct {
	publicBase string
}

func NewImageNormalizer(publicBase string) *ImageNormalizer {
	return &ImageNormalizer{publicBase: strings.TrimRight(publicBase, "/")}
}

func (n *ImageNormalizer) Normalize(raw, folder string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if folder == "" {
		folder = FolderDefault
	}
	trimmed := strings.TrimLeft(raw, "/")
	if strings.HasPrefix(trimmed, "uploads/") {
		segs := strings.SplitN(trimmed, "/", 3)
		if len(segs) == 3 {
			return n.publicBase + "/files/" + segs[1] + "/" + segs[2]
		}
		// uploads/<file> with no folder segment
		return n.publicBase + "/files/" + folder + "/" + segs[1]
	}
	if !strings.Contains(trimmed, "/") {
		return n.publicBase + "/files/" + folder + "/" + trimmed
	}
	return n.publicBase + "/" + trimmed
}
