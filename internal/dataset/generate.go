package dataset

import "math/rand/v2"

var (
	firstNames = []string{
		"tanner", "kevin", "maria", "jordan", "alice", "bob", "carol", "dave",
		"erin", "frank", "gina", "hugo", "iris", "jonas", "kira", "liam",
		"mila", "noah", "olga", "piet", "quinn", "rosa", "sven", "tara",
	}
	lastNames = []string{
		"linsley", "miller", "garcia", "nguyen", "smith", "jones", "king",
		"stone", "weber", "fischer", "novak", "silva", "berg", "costa",
		"dubois", "evans", "frost", "grant", "hayes", "ivanov",
	}
)

// Generate builds deterministic sample records: lens[0] top-level people,
// each with lens[1] sub-rows, and so on. Generate(seed) returns no records.
func Generate(seed uint64, lens ...int) []map[string]any {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // sample data

	var level func(depth int) []map[string]any
	level = func(depth int) []map[string]any {
		if depth >= len(lens) || lens[depth] <= 0 {
			return nil
		}

		recs := make([]map[string]any, 0, lens[depth])

		for i := 0; i < lens[depth]; i++ {
			rec := newPerson(rng)

			if sub := level(depth + 1); len(sub) > 0 {
				list := make([]any, len(sub))
				for j, s := range sub {
					list[j] = s
				}

				rec["subRows"] = list
			}

			recs = append(recs, rec)
		}

		return recs
	}

	recs := level(0)
	if recs == nil {
		recs = []map[string]any{}
	}

	return recs
}

func newPerson(rng *rand.Rand) map[string]any {
	status := "single"

	switch chance := rng.Float64(); {
	case chance > 0.66:
		status = "relationship"
	case chance > 0.33:
		status = "complicated"
	}

	return map[string]any{
		"firstName": firstNames[rng.IntN(len(firstNames))],
		"lastName":  lastNames[rng.IntN(len(lastNames))],
		"age":       int64(rng.IntN(30)),
		"visits":    int64(rng.IntN(100)),
		"progress":  int64(rng.IntN(100)),
		"status":    status,
	}
}
