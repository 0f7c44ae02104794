package prefabs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/milk9111/animengine/clip"
)

var fileNameReplacer = strings.NewReplacer("/", "_", " ", "_", "(", "", ")", "")

// ClipFileName is the prefab name a clip is saved under. Walk/A in the Base
// layer becomes clips/walk_a.yaml; in the Upper layer it becomes
// clips/upper_walk_a.yaml.
func ClipFileName(c *clip.Clip) string {
	name := c.Name()
	if c.Layer() != clip.DefaultLayer {
		name = c.Layer() + "_" + name
	}
	return "clips/" + fileNameReplacer.Replace(strings.ToLower(name)) + ".yaml"
}

// SaveClip writes c to its prefab file under prefabs/ on disk, where it
// overrides the embedded copy from then on. It returns the written path.
func SaveClip(c *clip.Clip) (string, error) {
	data, err := EncodeClipSpec(ExportClip(c))
	if err != nil {
		return "", err
	}
	path := diskPrefabPath(ClipFileName(c))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prefabs: save %s: %w", c.QualifiedName(), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("prefabs: save %s: %w", c.QualifiedName(), err)
	}
	return path, nil
}

// WatchDirs returns the prefab directories present on disk.
func WatchDirs() []string {
	var dirs []string
	for _, dir := range []string{"clips", "scripts"} {
		path := diskPrefabPath(dir)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			dirs = append(dirs, path)
		}
	}
	return dirs
}
