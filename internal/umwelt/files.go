package umwelt

import (
	"os"
	"path/filepath"

	"github.com/groundcrew/runway/internal/util"
)

const declarationFile = "service.json.tmpl"

func Selfish(path string) *ThisService {
	if !util.PathExists(filepath.Join(path, declarationFile)) {
		return nil
	}

	return &ThisService{
		Name: filepath.Base(path),
		Path: path,
	}
}

func SelfDiscovery(gitRoot string) []ThisService {
	var discovered []ThisService

	filepath.Walk(gitRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() && Selfish(path) != nil {
			discovered = append(discovered, ThisService{
				Name: filepath.Base(path),
				Path: path,
			})
		}

		return nil
	})

	return discovered
}
