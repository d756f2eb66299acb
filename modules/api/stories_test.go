package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, _ := doRequest(t, app, req)
	return resp
}

func flashCookieOf(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == flashCookie && c.Value != "" {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", flashCookie)
	return nil
}

// followRedirect requests the redirect target, carrying the flash cookie.
func followRedirect(t *testing.T, app *fiber.App, resp *http.Response) string {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, resp.Header.Get("Location"), nil)
	req.AddCookie(flashCookieOf(t, resp))
	page, body := doRequest(t, app, req)
	require.Equal(t, http.StatusOK, page.StatusCode)
	return string(body)
}

func sampleStory(id int64) domain.UserStory {
	return domain.UserStory{
		ID:          id,
		Project:     "tienda",
		Role:        "cliente",
		Goal:        "pagar con tarjeta",
		Reason:      "comprar más rápido",
		Priority:    domain.PriorityHigh,
		StoryPoints: 5,
	}
}

func storyDraft() domain.StoryPatch {
	return domain.StoryPatch{
		Project:  domain.Ptr("tienda"),
		Role:     domain.Ptr("cliente"),
		Goal:     domain.Ptr("pagar con tarjeta"),
		Reason:   domain.Ptr("comprar más rápido"),
		Priority: domain.Ptr(domain.PriorityMedium),
	}
}

func storyBacklog() *mockBacklogPort {
	stories := map[int64]domain.StoryWithTasks{
		3: {Story: sampleStory(3), Tasks: []domain.Task{{ID: 9, Title: "Formulario de pago", EffortHours: 2.5}}},
	}
	return &mockBacklogPort{
		listStoriesFunc: func(context.Context) ([]domain.StoryWithTasks, error) {
			return []domain.StoryWithTasks{stories[3]}, nil
		},
		getStoryFunc: func(_ context.Context, id int64) (domain.StoryWithTasks, error) {
			s, ok := stories[id]
			if !ok {
				return domain.StoryWithTasks{}, &domain.NotFoundError{Entity: "user story", ID: id}
			}
			return s, nil
		},
	}
}

func TestListStories_HTMLAndJSON(t *testing.T) {
	app := newTestApp(storyBacklog(), nil)

	resp, body := doJSON(t, app, http.MethodGet, "/user-stories", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "Historias de Usuario")
	assert.Contains(t, string(body), "pagar con tarjeta")

	req := httptest.NewRequest(http.MethodGet, "/user-stories", nil)
	req.Header.Set("Accept", "application/json")
	resp, body = doRequest(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list StoryListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "tienda", list.Stories[0].Story.Project)
}

func TestCreateStory_EmptyPrompt(t *testing.T) {
	called := false
	d := &mockDraftingPort{
		draftStoryFunc: func(context.Context, string) (domain.StoryPatch, error) {
			called = true
			return domain.StoryPatch{}, nil
		},
	}
	app := newTestApp(storyBacklog(), d)

	resp := postForm(t, app, "/user-stories", url.Values{"prompt": {"   "}})
	assert.Equal(t, storiesPath, resp.Header.Get("Location"))
	assert.Contains(t, followRedirect(t, app, resp), "el prompt no puede estar vacío")
	assert.False(t, called)
}

func TestCreateStory_Drafted(t *testing.T) {
	b := storyBacklog()
	var drafted bool
	b.createStoryFunc = func(_ context.Context, p domain.StoryPatch, d bool) (domain.UserStory, error) {
		drafted = d
		s, err := domain.NewUserStory(p)
		s.ID = 4
		return s, err
	}
	d := &mockDraftingPort{
		draftStoryFunc: func(_ context.Context, prompt string) (domain.StoryPatch, error) {
			assert.Equal(t, "Como usuario quiero pagar", prompt)
			return storyDraft(), nil
		},
	}
	app := newTestApp(b, d)

	resp := postForm(t, app, "/user-stories", url.Values{"prompt": {"Como usuario quiero pagar"}})
	assert.Contains(t, followRedirect(t, app, resp), "Historia de usuario creada correctamente")
	assert.True(t, drafted)
}

func TestCreateStory_DraftFailureStoresNothing(t *testing.T) {
	b := storyBacklog()
	stored := false
	b.createStoryFunc = func(context.Context, domain.StoryPatch, bool) (domain.UserStory, error) {
		stored = true
		return domain.UserStory{}, nil
	}
	d := &mockDraftingPort{
		draftStoryFunc: func(context.Context, string) (domain.StoryPatch, error) {
			return domain.StoryPatch{}, &domain.Fault{Kind: domain.KindDraft, Message: "draft generation failed: output is not JSON"}
		},
	}
	app := newTestApp(b, d)

	resp := postForm(t, app, "/user-stories", url.Values{"prompt": {"algo"}})
	page := followRedirect(t, app, resp)
	assert.Contains(t, page, "la IA no devolvió un resultado válido")
	assert.NotContains(t, page, "output is not JSON")
	assert.False(t, stored)
}

func TestStoryTasks(t *testing.T) {
	app := newTestApp(storyBacklog(), nil)

	resp, body := doJSON(t, app, http.MethodGet, "/user-stories/3/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Tareas de la historia #3")
	assert.Contains(t, string(body), "Formulario de pago")
	assert.Contains(t, string(body), "Esfuerzo total: 2.5 horas")

	resp, _ = doJSON(t, app, http.MethodGet, "/user-stories/8/tasks", "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, storiesPath, resp.Header.Get("Location"))
	assert.Contains(t, followRedirect(t, app, resp), "Historia de usuario no encontrada")
}

func TestGenerateStoryTasks(t *testing.T) {
	b := storyBacklog()
	var stored []domain.TaskPatch
	b.addStoryTasksFunc = func(_ context.Context, storyID int64, tasks []domain.TaskPatch, drafted bool) ([]domain.Task, error) {
		assert.Equal(t, int64(3), storyID)
		assert.True(t, drafted)
		stored = tasks
		return make([]domain.Task, len(tasks)), nil
	}
	d := &mockDraftingPort{
		decomposeStoryFunc: func(_ context.Context, story domain.UserStory) ([]domain.TaskPatch, error) {
			assert.Equal(t, "pagar con tarjeta", story.Goal)
			return []domain.TaskPatch{{Title: domain.Ptr("a")}, {Title: domain.Ptr("b")}}, nil
		},
	}
	app := newTestApp(b, d)

	resp := postForm(t, app, "/user-stories/3/tasks", url.Values{})
	assert.Equal(t, "/user-stories/3/tasks", resp.Header.Get("Location"))
	assert.Contains(t, followRedirect(t, app, resp), "Se generaron 2 tareas")
	assert.Len(t, stored, 2)
}

func TestGenerateStoryTasks_FailureStoresNothing(t *testing.T) {
	b := storyBacklog()
	stored := false
	b.addStoryTasksFunc = func(context.Context, int64, []domain.TaskPatch, bool) ([]domain.Task, error) {
		stored = true
		return nil, nil
	}
	d := &mockDraftingPort{
		decomposeStoryFunc: func(context.Context, domain.UserStory) ([]domain.TaskPatch, error) {
			return nil, &domain.Fault{Kind: domain.KindUnavailable, Message: "service unavailable"}
		},
	}
	app := newTestApp(b, d)

	resp := postForm(t, app, "/user-stories/3/tasks", url.Values{})
	assert.Contains(t, followRedirect(t, app, resp), "El servicio de IA no está configurado")
	assert.False(t, stored)
}

func TestDeleteStory(t *testing.T) {
	b := storyBacklog()
	b.deleteStoryFunc = func(_ context.Context, id int64) (int, error) {
		if id != 3 {
			return 0, &domain.NotFoundError{Entity: "user story", ID: id}
		}
		return 1, nil
	}
	app := newTestApp(b, nil)

	resp := postForm(t, app, "/user-stories/3/delete", url.Values{})
	assert.Equal(t, storiesPath, resp.Header.Get("Location"))
	assert.Contains(t, followRedirect(t, app, resp), "Historia de usuario eliminada junto con 1 tareas")

	resp = postForm(t, app, "/user-stories/5/delete", url.Values{})
	assert.Contains(t, followRedirect(t, app, resp), "Historia de usuario no encontrada")
}

func TestFlashIsShownOnce(t *testing.T) {
	app := newTestApp(storyBacklog(), nil)

	resp := postForm(t, app, "/user-stories", url.Values{"prompt": {""}})
	req := httptest.NewRequest(http.MethodGet, storiesPath, nil)
	req.AddCookie(flashCookieOf(t, resp))
	page, body := doRequest(t, app, req)
	require.Contains(t, string(body), "el prompt no puede estar vacío")

	var cleared bool
	for _, c := range page.Cookies() {
		if c.Name == flashCookie && c.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestForgedFlashIsIgnored(t *testing.T) {
	app := newTestApp(storyBacklog(), nil)

	forged, err := newFlashSigner("another-secret").sign(Flash{Level: flashSuccess, Message: "forged message"}, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, storiesPath, nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: forged})
	resp, body := doRequest(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "forged message")
}

func TestUpdateStory(t *testing.T) {
	var got domain.StoryPatch
	b := storyBacklog()
	b.updateStoryFunc = func(_ context.Context, id int64, patch domain.StoryPatch) (domain.StoryWithTasks, error) {
		if id != 3 {
			return domain.StoryWithTasks{}, &domain.NotFoundError{Entity: "user story", ID: id}
		}
		got = patch
		story := sampleStory(3)
		domain.ApplyStoryPatch(&story, patch)
		return domain.StoryWithTasks{Story: story, Tasks: []domain.Task{}}, nil
	}
	app := newTestApp(b, nil)

	resp, body := doJSON(t, app, http.MethodPut, "/user-stories/3", `{"goal": "pagar con bizum", "story_points": 8}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated domain.StoryWithTasks
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "pagar con bizum", updated.Story.Goal)
	assert.Equal(t, 8, updated.Story.StoryPoints)
	assert.Equal(t, "tienda", updated.Story.Project)
	assert.Nil(t, got.Project)

	resp, body = doJSON(t, app, http.MethodPut, "/user-stories/3", `{"role": "  ", "priority": "urgente"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.ElementsMatch(t, []string{"role", "priority"}, problemFields(decodeError(t, body).Problems))

	resp, _ = doJSON(t, app, http.MethodPut, "/user-stories/44", `{"goal": "x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPut, "/user-stories/abc", `{"goal": "x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
