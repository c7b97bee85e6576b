package completion

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// answerSchemaDescription is the canonical answer shape as shown to the model
// in the system instruction.
const answerSchemaDescription = `{
  "explanation": "string (markdown)",
  "codeSnippet": { "code": "string", "language": "string" } | null,
  "sources": [{ "title": "string", "url": "string", "type": "documentation" | "stackoverflow" | "github" }]
}`

func describedString(desc string) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	s.Description = desc
	return s
}

// answerResponseSchema is the same shape as the response schema the Gemini
// model is constrained to.
func answerResponseSchema() *openapi3.Schema {
	source := openapi3.NewObjectSchema().
		WithProperty("title", describedString("Título de la fuente.")).
		WithProperty("url", describedString("URL de la fuente.")).
		WithProperty("type", openapi3.NewStringSchema().WithEnum("documentation", "stackoverflow", "github"))
	source.Required = []string{"title", "url", "type"}

	snippet := openapi3.NewObjectSchema().
		WithProperty("code", describedString("El código fuente.")).
		WithProperty("language", describedString("Lenguaje de programación, por ejemplo 'python'.")).
		WithNullable()
	snippet.Description = "Fragmento de código listo para usar. Nulo si no hay código relevante."
	snippet.Required = []string{"code", "language"}

	sources := openapi3.NewArraySchema().WithItems(source)
	sources.Description = "Fuentes usadas para la respuesta."

	answer := openapi3.NewObjectSchema().
		WithProperty("explanation", describedString("Explicación técnica detallada en Markdown.")).
		WithProperty("codeSnippet", snippet).
		WithProperty("sources", sources)
	answer.Required = []string{"explanation", "sources"}
	return answer
}
