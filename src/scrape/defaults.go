// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package scrape

import (
	"strings"
	"time"
)

// Kunaicho collects published imperial schedule announcements. Empty urls
// select the agency's schedule pages.
func Kunaicho(urls ...string) *Source {
	if len(urls) == 0 {
		urls = []string{
			"https://www.kunaicho.go.jp/activity/activity/01/activity01.html",
			"https://www.kunaicho.go.jp/page/koho/show",
		}
	}
	return &Source{
		Name:          "kunaicho",
		IDPrefix:      "imperial",
		URLs:          urls,
		Authority:     "宮内庁",
		Area:          "皇居周辺（推定）",
		Purpose:       "公表済みのご日程",
		Tags:          []string{"imperial"},
		TitlePrefix:   "皇族行事: ",
		FallbackTitle: "ご日程",
		Default:       Clock{Hour: 9},
		EndClock:      &Clock{Hour: 12},
		Undated:       SkipUndated,
		DeepScan:      true,
	}
}

// Kantei collects published Prime Minister schedule/press announcements.
func Kantei(urls ...string) *Source {
	if len(urls) == 0 {
		urls = []string{
			"https://www.kantei.go.jp/jp/iken/koukai/",
			"https://www.kantei.go.jp/jp/101_kishida/statement/",
		}
	}
	return &Source{
		Name:          "kantei",
		IDPrefix:      "pm",
		URLs:          urls,
		Authority:     "内閣官房・首相官邸",
		Area:          "官邸〜霞が関（推定）",
		Purpose:       "公表済みの予定/会見等",
		Tags:          []string{"pm"},
		TitlePrefix:   "首相関連: ",
		FallbackTitle: "首相関連の予定/会見",
		Default:       Clock{Hour: 8},
		Window:        time.Hour,
		Undated:       SkipUndated,
	}
}

// MOFA collects state-guest related press releases. Announcements often
// name the visit before the date is fixed, so undated matches are deferred
// a week out rather than dropped.
func MOFA(urls ...string) *Source {
	if len(urls) == 0 {
		urls = []string{
			"https://www.mofa.go.jp/mofaj/press/index.html",
		}
	}
	return &Source{
		Name:          "mofa",
		IDPrefix:      "state",
		URLs:          urls,
		Authority:     "外務省",
		Area:          "迎賓館（赤坂離宮）周辺（推定）",
		Purpose:       "国賓来日に伴う行事/儀仗（公表情報ベース）",
		Tags:          []string{"state"},
		TitlePrefix:   "国賓関連: ",
		FallbackTitle: "国賓関連の発表",
		Keywords:      []string{"国賓", "公式実務訪問賓客", "歓迎行事", "儀仗", "来日"},
		Default:       Clock{Hour: 10},
		Window:        3 * time.Hour,
		Undated:       DeferUndated,
	}
}

// Traffic collects already-published restriction notices. Undated notices
// are skipped to avoid false positives.
func Traffic(urls ...string) *Source {
	if len(urls) == 0 {
		urls = []string{
			"https://www.shutoko.jp/roadinfo/event/",
			"https://www.keishicho.metro.tokyo.jp/kotu/kisei/index.html",
		}
	}
	return &Source{
		Name:          "traffic",
		IDPrefix:      "traffic",
		URLs:          urls,
		Authority:     "公表元",
		Area:          "都内一部（公表範囲）",
		Purpose:       "公表済みの交通規制",
		Tags:          []string{"imperial", "pm", "state"},
		TitlePrefix:   "交通規制: ",
		FallbackTitle: "交通規制のお知らせ",
		Keywords:      []string{"交通規制", "通行止め", "交通規制のお知らせ", "首都高", "羽田", "皇居", "迎賓館", "通行規制"},
		Default:       Clock{Hour: 7},
		Window:        4 * time.Hour,
		Undated:       SkipUndated,
		AreaFor:       trafficArea,
	}
}

func trafficArea(text string) string {
	switch {
	case strings.Contains(text, "皇居"):
		return "皇居周辺"
	case strings.Contains(text, "迎賓館"), strings.Contains(text, "赤坂"):
		return "迎賓館（赤坂）周辺"
	case strings.Contains(text, "羽田"):
		return "羽田空港周辺/首都高1号羽田線"
	}
	return "都内一部（公表範囲）"
}

// DefaultSources returns all collectors in their default configuration.
func DefaultSources() []*Source {
	return []*Source{Kunaicho(), Kantei(), MOFA(), Traffic()}
}
