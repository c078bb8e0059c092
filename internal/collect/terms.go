package collect

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// termsFile is the mapping form of a terms file.
type termsFile struct {
	Terms []string `yaml:"terms"`
}

// LoadTerms reads search terms from path. The file holds either a list of
// strings (JSON or YAML) or a mapping with a "terms" list. Blank and
// repeated terms are dropped; order is kept.
func LoadTerms(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "collect: read terms %s", path)
	}

	var list []string
	if err := yaml.Unmarshal(data, &list); err != nil {
		var tf termsFile
		if err2 := yaml.Unmarshal(data, &tf); err2 != nil {
			return nil, eris.Wrapf(err, "collect: parse terms %s", path)
		}
		list = tf.Terms
	}

	seen := make(map[string]struct{}, len(list))
	terms := make([]string, 0, len(list))
	for _, t := range list {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms, nil
}
