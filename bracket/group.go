// Package bracket раскладывает плоский список матчей турнира по раундам
// для отображения сетки. Раунд — просто текстовая метка; связей "матч ->
// следующий матч" в данных нет, порядок колонок задаётся каноническим
// списком стадий.
package bracket

import (
	"sort"

	"github.com/club-padel/admin-api/models"
)

// UnnamedRound — группа для матчей без названия раунда.
const UnnamedRound = "Sin Ronda"

// canonicalRounds задаёт порядок колонок сетки слева направо.
var canonicalRounds = []string{"Fase de Grupos", "Octavos", "Cuartos", "Semifinal", "Final"}

// Round — одна колонка сетки.
type Round struct {
	Name    string         `json:"name"`
	Matches []models.Match `json:"matches"`
}

// GroupByRound разбивает матчи на раунды и сортирует их:
// канонические стадии в каноническом порядке, незнакомые названия после
// них по алфавиту, группа без названия всегда последняя. Внутри раунда
// сохраняется порядок входного списка. Каждый матч попадает ровно в одну
// группу; ничего не теряется.
func GroupByRound(matches []models.Match) []Round {
	grouped := make(map[string][]models.Match)
	order := make([]string, 0)

	for _, match := range matches {
		name := UnnamedRound
		if match.RoundName != nil && *match.RoundName != "" {
			name = *match.RoundName
		}
		if _, ok := grouped[name]; !ok {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], match)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return roundLess(order[i], order[j])
	})

	rounds := make([]Round, 0, len(order))
	for _, name := range order {
		rounds = append(rounds, Round{Name: name, Matches: grouped[name]})
	}
	return rounds
}

// roundLess — строгий тотальный порядок названий раундов.
func roundLess(a, b string) bool {
	ra, rb := roundRank(a), roundRank(b)
	if ra != rb {
		return ra < rb
	}
	return a < b
}

func roundRank(name string) int {
	for i, canonical := range canonicalRounds {
		if name == canonical {
			return i
		}
	}
	if name == UnnamedRound {
		return len(canonicalRounds) + 1
	}
	return len(canonicalRounds)
}
