package model

import (
	"io"
	"mime/multipart"
)

// Summary is a problem entry in the menu.
type Summary struct {
	ID     uint   `json:"wid"`
	Tag    string `json:"tag"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Detail is a problem as shown to a competitor.
type Detail struct {
	ID      uint    `json:"wid"`
	Tag     string  `json:"tag"`
	Name    string  `json:"name"`
	Content string  `json:"content"`
	Link    string  `json:"link"`
	Points  int     `json:"points"`
	Status  *Status `json:"status,omitempty"`
}

// MenuRequest filters the menu by tag.
type MenuRequest struct {
	Tag string `json:"tag" binding:"required,max=32"`
}

// CreateRequest is the admin upload form.
type CreateRequest struct {
	Tag     string                `form:"tag" binding:"required,max=32"`
	Name    string                `form:"name" binding:"required,max=128"`
	Flag    string                `form:"flag" binding:"required,max=255"`
	Content string                `form:"content" binding:"required"`
	Points  int                   `form:"points" binding:"omitempty,min=0,max=100000"`
	Link    string                `form:"link" binding:"omitempty,url,max=512"`
	File    *multipart.FileHeader `form:"file"`
}

// Attachment is an opened problem file. The caller closes Body.
type Attachment struct {
	Filename string
	Body     io.ReadCloser
}

// AssignResponse points at a web problem's environment.
type AssignResponse struct {
	Link string `json:"link"`
}

// SubmitRequest carries a flag guess.
type SubmitRequest struct {
	Flag string `json:"flag" binding:"required,max=255"`
}
