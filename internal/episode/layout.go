// Package episode owns the on-disk layout of one podcast episode and the text
// formats of the files exchanged between pipeline stages.
package episode

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// Folder names inside an episode directory.
const (
	ArticlesDir  = "articles"
	SummariesDir = "summaries"
	ScriptsDir   = "scripts"
	AudioDir     = "audio"
	VideoDir     = "video"
)

// ScriptFileName is the podcast script produced by stage 3.
const ScriptFileName = "podcast_script.txt"

var (
	articleFilePattern = regexp.MustCompile(`^article_(\d+)\.txt$`)
	summaryFilePattern = regexp.MustCompile(`^summary_(\d+)\.txt$`)
	episodeDirPattern  = regexp.MustCompile(`^podcast_(\d+)$`)
)

// Layout resolves the paths of one episode: <root>/podcast_<N>/...
type Layout struct {
	Root    string
	Episode int
}

// NewLayout returns the layout of episode n under root.
func NewLayout(root string, n int) Layout {
	return Layout{Root: root, Episode: n}
}

// Dir returns the episode directory.
func (l Layout) Dir() string {
	return filepath.Join(l.Root, fmt.Sprintf("podcast_%d", l.Episode))
}

func (l Layout) ArticlesDir() string  { return filepath.Join(l.Dir(), ArticlesDir) }
func (l Layout) SummariesDir() string { return filepath.Join(l.Dir(), SummariesDir) }
func (l Layout) ScriptsDir() string   { return filepath.Join(l.Dir(), ScriptsDir) }
func (l Layout) AudioDir() string     { return filepath.Join(l.Dir(), AudioDir) }
func (l Layout) VideoDir() string     { return filepath.Join(l.Dir(), VideoDir) }

// ArticlePath returns articles/article_<i>.txt.
func (l Layout) ArticlePath(i int) string {
	return filepath.Join(l.ArticlesDir(), fmt.Sprintf("article_%d.txt", i))
}

// SummaryPath returns summaries/summary_<i>.txt.
func (l Layout) SummaryPath(i int) string {
	return filepath.Join(l.SummariesDir(), fmt.Sprintf("summary_%d.txt", i))
}

// ScriptPath returns scripts/podcast_script.txt.
func (l Layout) ScriptPath() string {
	return filepath.Join(l.ScriptsDir(), ScriptFileName)
}

// AudioPath returns audio/episode<N>.mp3.
func (l Layout) AudioPath() string {
	return filepath.Join(l.AudioDir(), fmt.Sprintf("episode%d.mp3", l.Episode))
}

// VideoPath returns video/episode<N>.mp4.
func (l Layout) VideoPath() string {
	return filepath.Join(l.VideoDir(), fmt.Sprintf("episode%d.mp4", l.Episode))
}

// SlidePath returns video/slide_<i>.png.
func (l Layout) SlidePath(i int) string {
	return filepath.Join(l.VideoDir(), fmt.Sprintf("slide_%d.png", i))
}

// Create makes the episode directory and all stage folders. Existing folders are kept.
func (l Layout) Create() error {
	return mkdirs(l.ArticlesDir(), l.SummariesDir(), l.ScriptsDir(), l.AudioDir(), l.VideoDir())
}

// CreateOutputs makes every folder except articles/, which only collect creates.
// A missing articles folder stays missing so later stages can report it.
func (l Layout) CreateOutputs() error {
	return mkdirs(l.SummariesDir(), l.ScriptsDir(), l.AudioDir(), l.VideoDir())
}

func mkdirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create episode folder %s: %w", dir, err)
		}
	}
	return nil
}

// NumberedFile is a stage file together with the number in its name.
type NumberedFile struct {
	Number int
	Path   string
}

// ListArticles returns the article files sorted by their numeric suffix
// (article_2.txt before article_10.txt). Files not matching article_<n>.txt are ignored.
func (l Layout) ListArticles() ([]NumberedFile, error) {
	return listNumbered(l.ArticlesDir(), articleFilePattern)
}

// ListSummaries returns the summary files sorted by their numeric suffix.
func (l Layout) ListSummaries() ([]NumberedFile, error) {
	return listNumbered(l.SummariesDir(), summaryFilePattern)
}

func listNumbered(dir string, pattern *regexp.Regexp) ([]NumberedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	files := make([]NumberedFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		files = append(files, NumberedFile{Number: n, Path: filepath.Join(dir, e.Name())})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Number < files[j].Number })
	return files, nil
}

// NextEpisode returns one more than the highest podcast_<n> folder under root,
// or 1 when root is missing or holds no episodes.
func NextEpisode(root string) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("list episodes in %s: %w", root, err)
	}

	highest := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := episodeDirPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}
