package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhamidi/chartparse/project"
)

// FileWatcher polls the workspace directory and reloads grammar files
// that changed on disk. Files open in an editor are left alone.
type FileWatcher struct {
	workspace    *Workspace
	stopCh       chan struct{}
	pollInterval time.Duration
	modTimes     map[string]time.Time
	onChange     func(paths []string)
}

// NewFileWatcher creates a watcher that calls onChange with the paths
// loaded, reloaded or removed by each poll.
func NewFileWatcher(w *Workspace, onChange func(paths []string)) *FileWatcher {
	return &FileWatcher{
		workspace:    w,
		stopCh:       make(chan struct{}),
		pollInterval: 1 * time.Second,
		modTimes:     make(map[string]time.Time),
		onChange:     onChange,
	}
}

func (fw *FileWatcher) Start() {
	go fw.run()
}

func (fw *FileWatcher) Stop() {
	close(fw.stopCh)
}

func (fw *FileWatcher) run() {
	ticker := time.NewTicker(fw.pollInterval)
	defer ticker.Stop()

	fw.poll()

	for {
		select {
		case <-fw.stopCh:
			return
		case <-ticker.C:
			fw.poll()
		}
	}
}

func (fw *FileWatcher) poll() {
	if changed := fw.scan(); len(changed) > 0 && fw.onChange != nil {
		fw.onChange(changed)
	}
}

func (fw *FileWatcher) scan() []string {
	var changed []string
	currentFiles := make(map[string]bool)

	filepath.Walk(fw.workspace.RootDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != fw.workspace.RootDir() && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if project.KindOf(path) == project.Unknown {
			return nil
		}

		currentFiles[path] = true

		lastMod, known := fw.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			fw.modTimes[path] = info.ModTime()
			if !fw.workspace.IsOpen(path) && fw.workspace.ScanFile(path) == nil {
				changed = append(changed, path)
			}
		}
		return nil
	})

	for path := range fw.modTimes {
		if !currentFiles[path] {
			delete(fw.modTimes, path)
			if !fw.workspace.IsOpen(path) {
				fw.workspace.RemoveFile(path)
				changed = append(changed, path)
			}
		}
	}
	return changed
}
