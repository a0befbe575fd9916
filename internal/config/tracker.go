package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hitoshi/careertrack/internal/model"
)

//go:embed tracker_defaults.yaml
var embeddedTrackerDefaults []byte

// TrackerDefaults は時間トラッカーの既定カテゴリと目標を保持する。
type TrackerDefaults struct {
	Categories           []string    `yaml:"categories"`
	ProductiveCategories []string    `yaml:"productive_categories"`
	Goals                model.Goals `yaml:"goals"`
}

// LoadTrackerDefaults は埋め込みの既定値を読み込み、pathが指定されていればその内容で上書きする。
// ファイルに現れた項目のみ置き換える。
func LoadTrackerDefaults(path string) (*TrackerDefaults, error) {
	defaults := &TrackerDefaults{}
	if err := yaml.Unmarshal(embeddedTrackerDefaults, defaults); err != nil {
		return nil, fmt.Errorf("埋め込みトラッカー設定の解析に失敗しました: %w", err)
	}
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("トラッカー設定ファイルの読み込みに失敗しました: %w", err)
	}
	var override TrackerDefaults
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("トラッカー設定ファイルの解析に失敗しました (%s): %w", path, err)
	}
	if len(override.Categories) > 0 {
		defaults.Categories = override.Categories
	}
	if len(override.ProductiveCategories) > 0 {
		defaults.ProductiveCategories = override.ProductiveCategories
	}
	if override.Goals != nil {
		defaults.Goals = override.Goals
	}
	return defaults, nil
}
