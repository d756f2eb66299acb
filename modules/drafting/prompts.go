package drafting

import (
	"fmt"
	"strings"

	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
)

var fieldLabels = map[string]string{
	"title":           "Título",
	"description":     "Descripción",
	"priority":        "Prioridad",
	"effort_hours":    "Esfuerzo estimado (horas)",
	"status":          "Estado",
	"assigned_to":     "Asignado a",
	"category":        "Categoría",
	"risk_analysis":   "Análisis de riesgos",
	"risk_mitigation": "Mitigación de riesgos",
	"project":         "Proyecto",
	"role":            "Rol",
	"goal":            "Objetivo",
	"reason":          "Motivo",
	"story_points":    "Puntos de historia",
}

// renderFields writes one "Label: value" line per field, skipping empty values.
func renderFields(fields []domain.Field) string {
	var b strings.Builder
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		label, ok := fieldLabels[f.Name]
		if !ok {
			label = f.Name
		}
		fmt.Fprintf(&b, "%s: %s\n", label, f.Value)
	}
	return b.String()
}

func enumList[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

const (
	storySystemPrompt = "Eres un experto en metodologías ágiles que redacta historias de usuario claras y estimables."

	decomposeSystemPrompt = "Eres un experto en planificación de proyectos de software que divide historias de usuario en tareas técnicas."

	describeSystemPrompt = "Eres experto generando descripciones técnicas breves."

	categorizeSystemPrompt = "Eres experto categorizando tareas. Las categorías pueden ser: Frontend, Backend, Testing, Infra, etc."

	estimateSystemPrompt = "Eres experto estimando el esfuerzo de tareas."

	riskAnalysisSystemPrompt = "Eres un experto en gestión de proyectos y análisis de riesgos."

	riskMitigationSystemPrompt = "Eres un experto en gestión de proyectos y mitigación de riesgos."
)

func storyUserPrompt(prompt string) string {
	return fmt.Sprintf(`Redacta una historia de usuario a partir de esta petición: %q

Responde solo con un objeto JSON con estas claves:
"project" (texto), "role" (texto), "goal" (texto), "reason" (texto),
"description" (texto), "priority" (uno de: %s),
"story_points" (entero), "effort_hours" (número de horas).`,
		prompt, enumList(domain.Priorities))
}

func decomposeUserPrompt(story domain.UserStory) string {
	return fmt.Sprintf(`Divide la siguiente historia de usuario en tareas técnicas.

%s
Responde solo con un objeto JSON con la clave "tasks": una lista de objetos con las claves
"title" (texto), "description" (texto), "priority" (uno de: %s),
"effort_hours" (número de horas), "status" (uno de: %s), "assigned_to" (texto, puede estar vacío),
"category" (Frontend, Backend, Testing, Infra, etc.), "risk_analysis" (texto) y "risk_mitigation" (texto).`,
		renderFields(story.Fields()), enumList(domain.Priorities), enumList(domain.Statuses))
}

func describeUserPrompt(title string) string {
	return fmt.Sprintf("Describe brevemente la tarea '%s'", title)
}

func categorizeUserPrompt(title, description string) string {
	return fmt.Sprintf("Categoriza la tarea en una palabra cuyo título es '%s' y cuya descripción es '%s'", title, description)
}

func estimateUserPrompt(title, description, category string) string {
	return fmt.Sprintf(
		"Responde solo con un número estimando el esfuerzo en horas para la tarea '%s' cuya descripción es '%s' y categoría '%s'",
		title, description, category)
}

func riskAnalysisUserPrompt(task domain.Task) string {
	return fmt.Sprintf("Analiza los riesgos de la siguiente tarea:\n\n%s\nEnumera los riesgos más relevantes.",
		renderFields(task.Fields()))
}

func riskMitigationUserPrompt(task domain.Task, analysis string) string {
	return fmt.Sprintf("Para la siguiente tarea:\n\n%s\nRiesgos identificados: %s\n\nProporciona un plan de mitigación para estos riesgos.",
		renderFields(task.Fields()), analysis)
}
