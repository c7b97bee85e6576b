package model

// ExampleQueries are offered to new users as ready-made questions.
var ExampleQueries = []string{
	"¿Cómo configurar CORS en FastAPI?",
	"Explica el patrón Repository en Django con un ejemplo.",
	"¿Cómo conectar React a una API de FastAPI usando axios?",
	"¿Cuál es la diferencia entre @staticmethod y @classmethod en Python?",
}

// ExampleQuery returns the example at the 0-based index i.
func ExampleQuery(i int) (string, bool) {
	if i < 0 || i >= len(ExampleQueries) {
		return "", false
	}
	return ExampleQueries[i], true
}
