package extract

import "go.uber.org/zap"

// autoOrder is the order in which auto tries the other extractors
var autoOrder = []Extractor{
	jsonExtractor{},
	keyValueExtractor{},
	delimiterExtractor{},
	regexpExtractor{},
}

type autoExtractor struct{}

func (autoExtractor) ID() ID       { return Auto }
func (autoExtractor) Name() string { return "Auto" }
func (autoExtractor) Description() string {
	return "Try JSON, key+value pairs, delimiter and regexp in turn"
}

func (autoExtractor) Parser(opts Options, log *zap.Logger) ParseFunc {
	parsers := make([]ParseFunc, len(autoOrder))
	for i, ext := range autoOrder {
		parsers[i] = ext.Parser(opts, log)
	}

	return func(raw string) (*Record, error) {
		for _, parse := range parsers {
			rec, err := parse(raw)
			if err == nil && rec != nil {
				return rec, nil
			}
		}
		return nil, nil
	}
}
