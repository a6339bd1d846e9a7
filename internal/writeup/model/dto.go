package model

import "time"

// Writeup actions accepted by POST /writeup/my_writeup.
const (
	ActionAdd    = "add_my_writeup"
	ActionChange = "change_my_writeup"
	ActionDelete = "delete_my_writeup"
)

// Summary is a writeup entry in the menu.
type Summary struct {
	ID          uint      `json:"id"`
	Tag         string    `json:"tag"`
	Name        string    `json:"name"`
	ProblemName string    `json:"problem_name"`
	Author      string    `json:"author"`
	UpdateTime  time.Time `json:"update_time"`
}

// Detail is a full writeup.
type Detail struct {
	Summary
	Content string `json:"content"`
}

// AddRequest publishes a writeup.
type AddRequest struct {
	ProblemName string `json:"problem_name" binding:"required,max=128"`
	Tag         string `json:"tag" binding:"required,max=32"`
	Name        string `json:"name" binding:"required,max=128"`
	Content     string `json:"content" binding:"required,max=1024"`
}

// ChangeRequest edits an owned writeup.
type ChangeRequest struct {
	ID          uint   `json:"id" binding:"required"`
	ProblemName string `json:"problem_name" binding:"required,max=128"`
	Tag         string `json:"tag" binding:"required,max=32"`
	Name        string `json:"name" binding:"required,max=128"`
	Content     string `json:"content" binding:"required,max=1024"`
}

// DeleteRequest removes an owned writeup.
type DeleteRequest struct {
	ID uint `json:"id" binding:"required"`
}

// ToSummary converts a writeup to its menu entry.
func (w *Writeup) ToSummary() Summary {
	return Summary{
		ID:          w.ID,
		Tag:         w.Tag,
		Name:        w.Name,
		ProblemName: w.ProblemName,
		Author:      w.UserName,
		UpdateTime:  w.UpdatedAt,
	}
}

// ToDetail converts a writeup to its full representation.
func (w *Writeup) ToDetail() *Detail {
	return &Detail{
		Summary: w.ToSummary(),
		Content: w.Content,
	}
}
