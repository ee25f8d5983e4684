package ui

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"statbook/internal/lessons"
)

type lessonPage struct {
	Lesson  lessons.Lesson
	Body    template.HTML
	Lessons []lessons.Lesson
	Prev    *lessons.Lesson
	Next    *lessons.Lesson
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, "index.html", gin.H{"Lessons": lessons.All()})
}

func (s *Server) handleLessonPage(c *gin.Context) {
	lesson, err := lessons.Find(c.Param("slug"))
	if err != nil {
		s.fail(c, "lesson", err)
		return
	}
	body, err := lesson.HTML()
	if err != nil {
		s.fail(c, "lesson", err)
		return
	}

	page := lessonPage{Lesson: lesson, Body: body, Lessons: lessons.All()}
	for i, l := range page.Lessons {
		if l.Slug != lesson.Slug {
			continue
		}
		if i > 0 {
			page.Prev = &page.Lessons[i-1]
		}
		if i+1 < len(page.Lessons) {
			page.Next = &page.Lessons[i+1]
		}
	}
	s.renderTemplate(c, "lesson.html", page)
}

func (s *Server) handleLessonList(c *gin.Context) {
	s.respond(c, "lessons", lessons.All())
}

// progressRequest carries the client's current snapshot plus the action to apply.
// Progress lives on the client; the server only validates transitions.
type progressRequest struct {
	Current   string   `json:"current"`
	Completed []string `json:"completed"`
	Action    string   `json:"action" binding:"required"`
}

type progressView struct {
	Lesson    string   `json:"lesson"`
	Current   string   `json:"current"`
	Completed []string `json:"completed"`
	Finished  bool     `json:"finished"`
}

func (s *Server) handleLessonProgress(c *gin.Context) {
	lesson, err := lessons.Find(c.Param("slug"))
	if err != nil {
		s.fail(c, "progress", err)
		return
	}
	var req progressRequest
	if !s.bind(c, "progress", &req) {
		return
	}

	progress, err := restoreProgress(req)
	if err != nil {
		s.fail(c, "progress", err)
		return
	}
	progress, err = progress.Apply(lessons.Action(req.Action))
	if err != nil {
		s.fail(c, "progress", err)
		return
	}

	view := progressView{
		Lesson:    lesson.Slug,
		Current:   progress.Current.String(),
		Completed: []string{},
		Finished:  progress.Finished(),
	}
	for _, st := range progress.Completed() {
		view.Completed = append(view.Completed, st.String())
	}
	s.respond(c, "progress", view)
}

func restoreProgress(req progressRequest) (lessons.Progress, error) {
	if req.Current == "" && len(req.Completed) == 0 {
		return lessons.NewProgress(), nil
	}
	current, err := lessons.ParseStage(req.Current)
	if err != nil {
		return lessons.Progress{}, err
	}
	completed := make([]lessons.Stage, 0, len(req.Completed))
	for _, name := range req.Completed {
		st, err := lessons.ParseStage(name)
		if err != nil {
			return lessons.Progress{}, err
		}
		completed = append(completed, st)
	}
	return lessons.RestoreProgress(current, completed)
}
