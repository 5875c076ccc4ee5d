package io

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/chriscorrea/nodellm/internal/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipe returns a read end of a pipe pre-filled with content
func pipe(t *testing.T, content string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	t.Cleanup(func() { r.Close() })
	return r
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadPrompt(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		useStdin bool
		files    map[string]string
		cliArgs  []string
		expected string
	}{
		{
			name:     "CLI args only",
			cliArgs:  []string{"a", "watercolor", "fox"},
			expected: "a watercolor fox",
		},
		{
			name:     "Nothing at all",
			expected: "",
		},
		{
			name:     "Stdin only",
			stdin:    "This is from stdin\n\n",
			useStdin: true,
			expected: "This is from stdin",
		},
		{
			name:     "Stdin, file, then args",
			stdin:    "first",
			useStdin: true,
			files:    map[string]string{"style.txt": "second\n"},
			cliArgs:  []string{"third"},
			expected: "first\n\nsecond\n\nthird",
		},
		{
			name:     "Blank file is skipped",
			files:    map[string]string{"blank.txt": " \n\t"},
			cliArgs:  []string{"only", "args"},
			expected: "only args",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdin *os.File
			if tt.useStdin {
				stdin = pipe(t, tt.stdin)
			}
			var files []string
			for name, content := range tt.files {
				files = append(files, writeFile(t, name, content))
			}

			got, err := ReadPrompt(stdin, tt.cliArgs, files)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReadPrompt_MissingFile(t *testing.T) {
	_, err := ReadPrompt(nil, nil, []string{filepath.Join(t.TempDir(), "nope.txt")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.txt")
}

func TestReadImages(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, size := range [][2]int{{4, 6}, {8, 2}} {
		path := filepath.Join(dir, fmt.Sprintf("ref-%d.png", i))
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, media.SavePNG(f, media.NewImage(size[0], size[1], 3)))
		require.NoError(t, f.Close())
		paths = append(paths, path)
	}

	batches, err := ReadImages(paths)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, [3]int{4, 6, 3}, batches[0][0].Shape())
	assert.Equal(t, [3]int{8, 2, 3}, batches[1][0].Shape())
}

func TestReadImages_NotAnImage(t *testing.T) {
	path := writeFile(t, "notes.png", "definitely not a png")

	_, err := ReadImages([]string{path})
	assert.ErrorIs(t, err, media.ErrDecode)
}
