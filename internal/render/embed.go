package render

import (
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/jasperwreed/chat2html/internal/models"
)

// Embed renders a message body: a call placeholder, an inline attachment
// preview or escaped text. mediaDir is the folder the attachment paths are
// relative to.
func Embed(body, mediaDir string, class models.SenderClass) string {
	kind, filename := Analyze(body)

	switch kind {
	case KindCall:
		icon := "📞 Incoming call"
		if class == models.SenderMe {
			icon = "📞 Outgoing call"
		}
		return fmt.Sprintf(`<div class="call-icon">%s</div>`, icon)
	case KindText:
		return strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")
	}

	src := html.EscapeString(MediaPath(mediaDir, filename))
	name := html.EscapeString(filename)

	switch kind {
	case KindImage:
		return fmt.Sprintf(`<img src="%s" alt="%s" style="max-width: 100%%;">`, src, name)
	case KindAudio:
		return fmt.Sprintf(`<audio controls><source src="%s" type="audio/mpeg">Your browser does not support the audio element.</audio>`, src)
	case KindVideo:
		return fmt.Sprintf(`<video controls><source src="%s" type="video/mp4">Your browser does not support the video tag.</video>`, src)
	case KindPDF:
		return fmt.Sprintf(`
<object data="%s" type="application/pdf" width="450px" height="700px">
    <p>Unable to display PDF file. <a href="%s">Download</a> instead.</p>
</object>
`, src, src)
	default:
		return fmt.Sprintf(`<a href="%s">%s</a> (file attached)`, src, name)
	}
}

// MediaPath joins the media folder and an attachment name with forward
// slashes, as used in HTML attributes.
func MediaPath(mediaDir, filename string) string {
	dir := strings.TrimSuffix(filepath.ToSlash(mediaDir), "/")
	if dir == "" || dir == "." {
		return filename
	}
	return dir + "/" + filename
}
