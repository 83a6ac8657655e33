package app

import (
	"fmt"

	"quadterm/quados/fs/flashfs"
)

// Fixture is a document seeded into the store at startup.
type Fixture struct {
	Name string
	Text string
}

// Fixtures are the example programs every machine boots with.
var Fixtures = []Fixture{
	{"hello", `print("Hello, world!")`},
	{"nums", "print(1)\nprint(257)"},
	{"average", `sum := 0
count := 0
averaging := true
while averaging {
    num := input("Enter a number:")
    if (num == "quit") {
        averaging := false
    } else {
        sum := (sum + num)
        count := (count + 1)
    }
}
print((sum / count))`},
	{"pi", `sum := 0
i := 0
neg := false
terms := input("Num terms:")
while (i < terms) {
    term := (1.0 / ((2.0 * i) + 1.0))
    if neg {
        term := -term
    }
    sum := (sum + term)
    neg := not neg
    i := (i + 1)
}
print((4 * sum))`},
}

// Seed writes every fixture to s, replacing existing files of the same name.
func Seed(s *flashfs.Store) error {
	for _, fx := range Fixtures {
		f, err := s.Create(fx.Name)
		if err != nil {
			return fmt.Errorf("seed %s: %w", fx.Name, err)
		}
		if _, err := f.Write([]byte(fx.Text)); err != nil {
			_ = f.Close()
			return fmt.Errorf("seed %s: %w", fx.Name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("seed %s: %w", fx.Name, err)
		}
	}
	return nil
}
