// internal/pipeline/inputs.go
package pipeline

import (
	"os"
	"path/filepath"
	"sort"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
)

// TargetDataFile returns the first *.csv in dir in lexical order.
func TargetDataFile(dir string) (string, error) {
	files, err := csvFiles(dir)
	if err != nil || len(files) == 0 {
		return "", apperrors.NewDataNotFoundError("no CSV file found in " + dir)
	}
	return files[0], nil
}

// ModelFiles returns the *.csv files of one model directory. ok is false
// when the directory does not exist.
func ModelFiles(modelOutputDir, model string) (files []string, ok bool) {
	dir := filepath.Join(modelOutputDir, model)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, false
	}
	files, _ = csvFiles(dir)
	return files, true
}

// InputFiles lists the files a build reads: the config, the target data file
// and every model CSV. Missing inputs are left out.
func InputFiles(st *State) []string {
	var files []string
	if st.Config != nil && st.Config.ConfigPath != "" {
		files = append(files, st.Config.ConfigPath)
	}
	if f, err := TargetDataFile(st.TargetDataDir); err == nil {
		files = append(files, f)
	}
	if st.Config != nil {
		for _, name := range st.Config.ModelNames() {
			mf, _ := ModelFiles(st.ModelOutputDir, name)
			files = append(files, mf...)
		}
	}
	return files
}

func csvFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
