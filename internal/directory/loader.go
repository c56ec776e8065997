package directory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Securities []Entry `yaml:"securities"`
}

// LoadFile reads a replacement entry list from a YAML file.
func LoadFile(path string) ([]Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileFormat
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f.Securities, nil
}

// DefaultEntries is the built-in KOSPI large-cap seed list, used when no
// securities file is configured. Aliases cover common spoken variants.
func DefaultEntries() []Entry {
	return []Entry{
		{Code: "005930", Name: "삼성전자"},
		{Code: "000660", Name: "SK하이닉스", Aliases: []string{"하이닉스"}},
		{Code: "035420", Name: "네이버", Aliases: []string{"NAVER"}},
		{Code: "035720", Name: "카카오"},
		{Code: "005380", Name: "현대자동차", Aliases: []string{"현대차"}},
		{Code: "066570", Name: "LG전자"},
		{Code: "207940", Name: "삼성바이오로직스"},
		{Code: "005490", Name: "POSCO홀딩스", Aliases: []string{"포스코"}},
		{Code: "051910", Name: "LG화학"},
		{Code: "000270", Name: "기아"},
		{Code: "006400", Name: "삼성SDI"},
		{Code: "068270", Name: "셀트리온"},
		{Code: "096770", Name: "SK이노베이션"},
		{Code: "105560", Name: "KB금융"},
		{Code: "055550", Name: "신한지주"},
		{Code: "086790", Name: "하나금융지주"},
		{Code: "028260", Name: "삼성물산"},
		{Code: "051900", Name: "LG생활건강"},
		{Code: "032830", Name: "삼성생명"},
		{Code: "015760", Name: "한국전력"},
		{Code: "012330", Name: "현대모비스"},
		{Code: "017670", Name: "SK텔레콤"},
		{Code: "030200", Name: "KT"},
		{Code: "032640", Name: "LG유플러스"},
		{Code: "036570", Name: "엔씨소프트"},
		{Code: "251270", Name: "넷마블"},
		{Code: "259960", Name: "크래프톤"},
		{Code: "323410", Name: "카카오뱅크"},
		{Code: "377300", Name: "카카오페이"},
	}
}
