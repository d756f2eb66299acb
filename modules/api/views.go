package api

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
)

var viewFuncs = template.FuncMap{
	"hours": domain.FormatHours,
}

const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 60rem; }
.flash-success { background: #e6f4ea; padding: .5rem 1rem; }
.flash-error { background: #fce8e6; padding: .5rem 1rem; }
table { border-collapse: collapse; width: 100%; }
td, th { border-bottom: 1px solid #ddd; padding: .4rem; text-align: left; vertical-align: top; }
</style>
</head>
<body>
{{with .Flash}}<p class="flash-{{.Level}}">{{.Message}}</p>{{end}}
{{template "content" .}}
</body>
</html>{{end}}`

const storiesHTML = `{{define "content"}}
<h1>Historias de Usuario</h1>
<form method="post" action="/user-stories">
  <label for="prompt">Describe la funcionalidad:</label>
  <textarea id="prompt" name="prompt" rows="3" cols="80"></textarea>
  <button type="submit">Generar historia</button>
</form>
{{if .Stories}}
<table>
<tr><th>#</th><th>Proyecto</th><th>Historia</th><th>Prioridad</th><th>Puntos</th><th>Tareas</th><th></th></tr>
{{range .Stories}}
<tr>
  <td>{{.Story.ID}}</td>
  <td>{{.Story.Project}}</td>
  <td>Como {{.Story.Role}}, quiero {{.Story.Goal}} para {{.Story.Reason}}</td>
  <td>{{.Story.Priority}}</td>
  <td>{{.Story.StoryPoints}}</td>
  <td><a href="/user-stories/{{.Story.ID}}/tasks">{{len .Tasks}} tareas</a></td>
  <td><form method="post" action="/user-stories/{{.Story.ID}}/delete"><button type="submit">Eliminar</button></form></td>
</tr>
{{end}}
</table>
{{else}}
<p>No hay historias de usuario todavía.</p>
{{end}}
{{end}}`

const storyTasksHTML = `{{define "content"}}
<p><a href="/user-stories">&larr; Historias de Usuario</a></p>
<h1>Tareas de la historia #{{.Story.Story.ID}}</h1>
<dl>
{{range .Story.Story.Fields}}<dt>{{.Name}}</dt><dd>{{.Value}}</dd>
{{end}}
</dl>
<form method="post" action="/user-stories/{{.Story.Story.ID}}/tasks">
  <button type="submit">Generar tareas con IA</button>
</form>
{{if .Story.Tasks}}
<table>
<tr><th>#</th><th>Título</th><th>Descripción</th><th>Prioridad</th><th>Horas</th><th>Estado</th><th>Asignada a</th><th>Categoría</th></tr>
{{range .Story.Tasks}}
<tr>
  <td>{{.ID}}</td>
  <td>{{.Title}}</td>
  <td>{{.Description}}</td>
  <td>{{.Priority}}</td>
  <td>{{hours .EffortHours}}</td>
  <td>{{.Status}}</td>
  <td>{{.AssignedTo}}</td>
  <td>{{.Category}}</td>
</tr>
{{end}}
</table>
<p>Esfuerzo total: {{hours .Story.TotalEffort}} horas</p>
{{else}}
<p>Esta historia aún no tiene tareas.</p>
{{end}}
{{end}}`

var (
	storiesView    = parseView("stories", storiesHTML)
	storyTasksView = parseView("story-tasks", storyTasksHTML)
)

func parseView(name, content string) *template.Template {
	t := template.Must(template.New(name).Funcs(viewFuncs).Parse(layoutHTML))
	return template.Must(t.Parse(content))
}

type storiesPage struct {
	Title   string
	Flash   *Flash
	Stories []domain.StoryWithTasks
}

type storyTasksPage struct {
	Title string
	Flash *Flash
	Story domain.StoryWithTasks
}

// render executes a view into the response body as HTML.
func render(c *fiber.Ctx, view *template.Template, data any) error {
	var buf bytes.Buffer
	if err := view.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
