// Package render turns parsed chat messages into the static HTML document.
package render

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Kind classifies what a message body renders as.
type Kind int

const (
	KindText Kind = iota
	KindCall
	KindImage
	KindAudio
	KindVideo
	KindPDF
	KindOther
)

var kindNames = map[Kind]string{
	KindText:  "text",
	KindCall:  "call",
	KindImage: "image",
	KindAudio: "audio",
	KindVideo: "video",
	KindPDF:   "pdf",
	KindOther: "other",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsAttachment reports whether k is one of the attachment kinds.
func (k Kind) IsAttachment() bool {
	return k >= KindImage && k <= KindOther
}

var extensionKinds = map[string]Kind{
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".gif":  KindImage,
	".bmp":  KindImage,
	".mp3":  KindAudio,
	".wav":  KindAudio,
	".ogg":  KindAudio,
	".opus": KindAudio,
	".mp4":  KindVideo,
	".avi":  KindVideo,
	".mov":  KindVideo,
	".wmv":  KindVideo,
	".pdf":  KindPDF,
}

// <attached: filename.ext>
var attachedPattern = regexp.MustCompile(`<attached: (?P<filename>[^>]*)`)

// callPlaceholder is how the exporter writes a call-log entry.
const callPlaceholder = "null"

// Classify maps a file name to exactly one attachment kind.
func Classify(filename string) Kind {
	if k, ok := extensionKinds[strings.ToLower(filepath.Ext(filename))]; ok {
		return k
	}
	return KindOther
}

// Analyze inspects a message body and returns its kind and, for
// attachments, the referenced file name.
func Analyze(body string) (Kind, string) {
	if strings.EqualFold(body, callPlaceholder) {
		return KindCall, ""
	}
	if m := attachedPattern.FindStringSubmatch(body); m != nil {
		filename := m[attachedPattern.SubexpIndex("filename")]
		return Classify(filename), filename
	}
	return KindText, ""
}
