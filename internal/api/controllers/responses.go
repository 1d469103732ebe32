package controllers

import "github.com/cosmico/webinar/internal/domain"

type RunDetail struct {
	Run     *domain.Run         `json:"run"`
	Results []*domain.JobResult `json:"results"`
}

type RunList struct {
	Runs []*domain.Run `json:"runs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
