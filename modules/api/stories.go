package api

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
)

const storiesPath = "/user-stories"

func storyTasksPath(id int64) string {
	return fmt.Sprintf("%s/%d/tasks", storiesPath, id)
}

// flashMessage turns a failure into text fit for a page. Internal detail is
// logged, not shown.
func flashMessage(c *fiber.Ctx, err error) string {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return "Historia de usuario no encontrada"
	case domain.KindUnavailable:
		return "El servicio de IA no está configurado"
	case domain.KindDraft:
		log.Printf("[api] %s %s draft rejected: %v", c.Method(), c.Path(), err)
		return "Error: la IA no devolvió un resultado válido, inténtalo de nuevo"
	case domain.KindValidation:
		return "Error: " + err.Error()
	default:
		log.Printf("[api] %s %s failed: %v", c.Method(), c.Path(), err)
		return "Error interno del servidor"
	}
}

// redirectWithError flashes err and redirects to target.
func (m *APIModule) redirectWithError(c *fiber.Ctx, target string, err error) error {
	m.flash.set(c, flashError, flashMessage(c, err))
	return c.Redirect(target, fiber.StatusFound)
}

// listStories handles GET /user-stories.
func (m *APIModule) listStories(c *fiber.Ctx) error {
	stories, err := m.backlog.ListStories(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	if stories == nil {
		stories = []domain.StoryWithTasks{}
	}

	if wantsJSON(c) {
		return c.JSON(StoryListResponse{Stories: stories, Total: len(stories)})
	}
	return render(c, storiesView, storiesPage{
		Title:   "Historias de Usuario",
		Flash:   m.flash.consume(c),
		Stories: stories,
	})
}

// createStory handles POST /user-stories. The story is drafted from the
// submitted prompt and nothing is stored unless the draft is valid.
func (m *APIModule) createStory(c *fiber.Ctx) error {
	prompt := strings.TrimSpace(c.FormValue("prompt"))
	if prompt == "" {
		m.flash.set(c, flashError, "Error: el prompt no puede estar vacío")
		return c.Redirect(storiesPath, fiber.StatusFound)
	}

	draft, err := m.drafting.DraftStory(c.UserContext(), prompt)
	if err != nil {
		return m.redirectWithError(c, storiesPath, err)
	}

	story, err := m.backlog.CreateStory(c.UserContext(), draft, true)
	if err != nil {
		return m.redirectWithError(c, storiesPath, err)
	}

	log.Printf("[api] Drafted user story %d for project '%s'", story.ID, story.Project)
	m.flash.set(c, flashSuccess, "Historia de usuario creada correctamente")
	return c.Redirect(storiesPath, fiber.StatusFound)
}

// storyTasks handles GET /user-stories/:id/tasks.
func (m *APIModule) storyTasks(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return m.redirectWithError(c, storiesPath, &domain.NotFoundError{Entity: "user story"})
	}

	story, err := m.backlog.GetStory(c.UserContext(), id)
	if err != nil {
		if wantsJSON(c) {
			return writeError(c, err)
		}
		return m.redirectWithError(c, storiesPath, err)
	}

	if wantsJSON(c) {
		return c.JSON(story)
	}
	return render(c, storyTasksView, storyTasksPage{
		Title: fmt.Sprintf("Tareas de la historia #%d", story.Story.ID),
		Flash: m.flash.consume(c),
		Story: story,
	})
}

// updateStory handles PUT /user-stories/:id, a JSON partial update. Only the
// fields present in the body are changed.
func (m *APIModule) updateStory(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return writeError(c, &domain.NotFoundError{Entity: "user story"})
	}

	patch, err := domain.DecodeStoryPatch(c.Body())
	if err != nil {
		return writeError(c, err)
	}
	if err := domain.ValidateStoryPatch(patch); err != nil {
		return writeError(c, err)
	}

	story, err := m.backlog.UpdateStory(c.UserContext(), id, patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(story)
}

// generateStoryTasks handles POST /user-stories/:id/tasks. The story is
// decomposed into tasks by the drafting module and the whole batch is stored,
// or none of it.
func (m *APIModule) generateStoryTasks(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return m.redirectWithError(c, storiesPath, &domain.NotFoundError{Entity: "user story"})
	}

	story, err := m.backlog.GetStory(c.UserContext(), id)
	if err != nil {
		return m.redirectWithError(c, storiesPath, err)
	}

	drafts, err := m.drafting.DecomposeStory(c.UserContext(), story.Story)
	if err != nil {
		return m.redirectWithError(c, storyTasksPath(id), err)
	}

	tasks, err := m.backlog.AddStoryTasks(c.UserContext(), id, drafts, true)
	if err != nil {
		return m.redirectWithError(c, storyTasksPath(id), err)
	}

	m.flash.set(c, flashSuccess, fmt.Sprintf("Se generaron %d tareas para la historia", len(tasks)))
	return c.Redirect(storyTasksPath(id), fiber.StatusFound)
}

// deleteStory handles POST /user-stories/:id/delete. The story's tasks are
// removed with it.
func (m *APIModule) deleteStory(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return m.redirectWithError(c, storiesPath, &domain.NotFoundError{Entity: "user story"})
	}

	removed, err := m.backlog.DeleteStory(c.UserContext(), id)
	if err != nil {
		return m.redirectWithError(c, storiesPath, err)
	}

	m.flash.set(c, flashSuccess, fmt.Sprintf("Historia de usuario eliminada junto con %d tareas", removed))
	return c.Redirect(storiesPath, fiber.StatusFound)
}
