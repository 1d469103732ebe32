package engine

import (
	"fmt"
	"path/filepath"

	"github.com/cosmico/webinar/internal/domain"
	"github.com/cosmico/webinar/internal/infra/logger"
	"github.com/gosimple/slug"
)

const videoExt = ".mp4"

// Slug turns a display title into a lowercase, hyphenated, path-safe name.
func Slug(title string) string {
	s := slug.Make(title)
	if s == "" {
		return "untitled"
	}
	return s
}

// assignPaths binds every job to <outDir>/<slug>.mp4. When two titles slugify
// to the same name the later job gets a suffix derived from its URL, so the
// mapping is stable across runs and reruns still skip.
func assignPaths(outDir string, jobs []domain.DownloadJob, log *logger.Logger) []Task {
	taken := make(map[string]bool, len(jobs))
	tasks := make([]Task, 0, len(jobs))

	for _, job := range jobs {
		base := Slug(job.Title)
		name := base
		if taken[name] {
			name = base + "-" + domain.ShortHash(job.SourceURL)
			for n := 2; taken[name]; n++ {
				name = fmt.Sprintf("%s-%s-%d", base, domain.ShortHash(job.SourceURL), n)
			}
			log.Warn("Output name %s%s already used in this run, saving %q as %s%s", base, videoExt, job.Title, name, videoExt)
		}
		taken[name] = true

		tasks = append(tasks, Task{
			Job:  job,
			Path: filepath.Join(outDir, name+videoExt),
		})
	}

	return tasks
}
