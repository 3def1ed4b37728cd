package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasperwreed/chat2html/internal/config"
	"github.com/jasperwreed/chat2html/internal/logging"
	"github.com/jasperwreed/chat2html/internal/models"
)

const sampleChat = "\u200e[01/02/2023, 10:00:00] Alice: Hi\n" +
	"[01/02/2023, 10:01:00] .: Hello\n" +
	"and more\n" +
	"[02/02/2023, 09:00:00] Alice: \u200e<attached: 00000001-PHOTO.jpg>\n" +
	"[02/02/2023, 09:05:00] Alice: null\n"

func testConfig(outputDir string) config.ConvertConfig {
	return config.ConvertConfig{
		ChatFile:   config.DefaultChatFile,
		SelfMarker: config.DefaultSelfMarker,
		SelfName:   config.DefaultSelfName,
		OutputDir:  outputDir,
	}
}

// exportFolder creates <root>/family/_chat.txt and returns root and the folder.
func exportFolder(t *testing.T, chat string) (string, string) {
	t.Helper()
	root := t.TempDir()
	folder := filepath.Join(root, "family")
	require.NoError(t, os.Mkdir(folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "_chat.txt"), []byte(chat), 0o644))
	return root, folder
}

func htmlFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
	require.NoError(t, err)
	return matches
}

type memoryArchive struct {
	saved []*models.Conversation
	err   error
}

func (m *memoryArchive) SaveConversation(conv *models.Conversation) error {
	if m.err != nil {
		return m.err
	}
	conv.ID = int64(len(m.saved) + 1)
	m.saved = append(m.saved, conv)
	return nil
}

func TestRun(t *testing.T) {
	root, folder := exportFolder(t, sampleChat)

	c := New(testConfig(root), logging.Nop())
	result, err := c.Run(context.Background(), folder)
	require.NoError(t, err)

	assert.Equal(t, "family_v0.html", result.Name)
	assert.Equal(t, filepath.Join(root, "family_v0.html"), result.OutputPath)
	assert.Equal(t, "%d/%m/%Y, %H:%M:%S", result.Format.Name)
	assert.Equal(t, 4, result.Rendered)
	assert.Equal(t, 0, result.Skipped)

	data, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	out := string(data)

	assert.Equal(t, 1, strings.Count(out, "01 February 2023"))
	assert.Equal(t, 1, strings.Count(out, "02 February 2023"))
	assert.Contains(t, out, `<div class="bubble me">`)
	assert.Contains(t, out, "Hello<br>and more")
	assert.Contains(t, out, `<img src="`+filepath.ToSlash(folder)+`/00000001-PHOTO.jpg"`)
	assert.Contains(t, out, "📞 Incoming call")
	assert.True(t, strings.HasSuffix(out, "</body></html>"))

	conv := result.Conversation
	require.NotNil(t, conv)
	assert.NotEmpty(t, conv.RunID)
	assert.Equal(t, "family", conv.Title)
	assert.Equal(t, folder, conv.SourceDir)
	require.Len(t, conv.Messages, 4)
	assert.Equal(t, "Me", conv.Messages[1].Sender)
	assert.Equal(t, "image", conv.Messages[2].Kind)
	assert.Equal(t, "call", conv.Messages[3].Kind)
}

func TestRun_Versioning(t *testing.T) {
	root, folder := exportFolder(t, sampleChat)
	c := New(testConfig(root), logging.Nop())

	first, err := c.Run(context.Background(), folder)
	require.NoError(t, err)
	second, err := c.Run(context.Background(), folder)
	require.NoError(t, err)

	assert.Equal(t, "family_v0.html", first.Name)
	assert.Equal(t, "family_v1.html", second.Name)
	assert.NotEqual(t, first.Conversation.RunID, second.Conversation.RunID)
	assert.Len(t, htmlFiles(t, root), 2)
}

func TestRun_SkipsUnparsable(t *testing.T) {
	chat := "[01/02/2023, 10:00:00] Alice: Hi\n" +
		"[01/02/2023, 10:00:30] Alice changed the group name\n" +
		"[01/02/2023, 10:01:00] Bob: Yo\n"
	root, folder := exportFolder(t, chat)

	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.Config{Level: logging.LevelWarn, JSONFormat: true, Output: &buf})

	result, err := New(testConfig(root), logger).Run(context.Background(), folder)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Rendered)
	assert.Equal(t, 1, result.Skipped)
	assert.Contains(t, buf.String(), "couldn't detect timestamp")
	assert.Contains(t, buf.String(), `"line":2`)
}

func TestRun_FatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) (outDir, folder string)
		wantErr error
		wantMsg string
	}{
		{
			name: "folder missing",
			setup: func(t *testing.T) (string, string) {
				root := t.TempDir()
				return root, filepath.Join(root, "absent")
			},
			wantErr: ErrInvalidFolder,
			wantMsg: "Invalid folder path.",
		},
		{
			name: "folder is a file",
			setup: func(t *testing.T) (string, string) {
				root := t.TempDir()
				path := filepath.Join(root, "file")
				require.NoError(t, os.WriteFile(path, nil, 0o644))
				return root, path
			},
			wantErr: ErrInvalidFolder,
			wantMsg: "Invalid folder path.",
		},
		{
			name: "chat file missing",
			setup: func(t *testing.T) (string, string) {
				root := t.TempDir()
				folder := filepath.Join(root, "family")
				require.NoError(t, os.Mkdir(folder, 0o755))
				return root, folder
			},
			wantErr: ErrChatFileMissing,
			wantMsg: "Chat file not found.",
		},
		{
			name: "no parsable timestamps",
			setup: func(t *testing.T) (string, string) {
				return exportFolder(t, "[yesterday] Alice: Hi\n")
			},
			wantErr: ErrFormatUndetected,
			wantMsg: "Could not detect timestamp format.",
		},
		{
			name: "empty transcript",
			setup: func(t *testing.T) (string, string) {
				return exportFolder(t, "")
			},
			wantErr: ErrFormatUndetected,
			wantMsg: "Could not detect timestamp format.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir, folder := tt.setup(t)

			result, err := New(testConfig(outDir), logging.Nop()).Run(context.Background(), folder)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)

			msg, ok := Message(err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantMsg, msg)

			assert.Empty(t, htmlFiles(t, outDir), "no output on fatal error")
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	root, folder := exportFolder(t, sampleChat)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(root), logging.Nop()).Run(ctx, folder)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, htmlFiles(t, root))
}

func TestRun_Archive(t *testing.T) {
	root, folder := exportFolder(t, sampleChat)
	archive := &memoryArchive{}

	c := New(testConfig(root), logging.Nop(), WithArchive(archive), WithTags("family", "2023"))
	result, err := c.Run(context.Background(), folder)
	require.NoError(t, err)

	require.Len(t, archive.saved, 1)
	assert.Same(t, result.Conversation, archive.saved[0])
	assert.Equal(t, []string{"family", "2023"}, archive.saved[0].Tags)
	assert.Equal(t, int64(1), result.Conversation.ID)
}

func TestRun_ArchiveFailureKeepsOutput(t *testing.T) {
	root, folder := exportFolder(t, sampleChat)
	archive := &memoryArchive{err: errors.New("disk full")}

	result, err := New(testConfig(root), logging.Nop(), WithArchive(archive)).Run(context.Background(), folder)
	require.Error(t, err)
	require.NotNil(t, result)

	_, fatal := Message(err)
	assert.False(t, fatal)
	assert.FileExists(t, result.OutputPath)
}

func TestMessage_Unknown(t *testing.T) {
	msg, ok := Message(errors.New("boom"))
	assert.False(t, ok)
	assert.Empty(t, msg)
}

func TestMediaDir(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "chats", "family")

	rel := filepath.Join("chats", "family")

	tests := []struct {
		name      string
		outputDir string
		folder    string
		want      string
	}{
		{"absolute folder kept", filepath.Join(root, "out"), folder, folder},
		{"relative from parent", root, rel, rel},
		{"relative from itself", folder, rel, "."},
		{"relative from sibling", filepath.Join(root, "chats", "out"), rel, filepath.Join("..", "family")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MediaDir(tt.outputDir, folder, tt.folder))
		})
	}
}

func TestRender(t *testing.T) {
	root, folder := exportFolder(t, sampleChat)
	result, err := New(testConfig(root), logging.Nop()).Run(context.Background(), folder)
	require.NoError(t, err)

	out := Render(result.Conversation, root, "Me")
	assert.Contains(t, out, `<img src="family/00000001-PHOTO.jpg"`)
	assert.Contains(t, out, `<div class="bubble me">`)
	assert.Equal(t, 2, strings.Count(out, `<div class="date">`))
}
