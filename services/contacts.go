package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/almatuck/levee-go/transport"
)

// Contact as held by the platform. Wire names are snake_case; the
// transport translates.
type Contact struct {
	Id        string            `json:"id,omitempty"`
	Email     string            `json:"email"`
	FirstName string            `json:"firstName,omitempty"`
	LastName  string            `json:"lastName,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	Fields    map[string]string `json:"customFields,omitempty"`
	CreatedAt string            `json:"createdAt,omitempty"`
}

type ContactPage struct {
	Contacts []Contact `json:"contacts"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

// ContactsService wraps the contact resource. One method per
// request/response pair, no state.
type ContactsService struct {
	t *transport.Transport
}

func NewContactsService(t *transport.Transport) *ContactsService {
	return &ContactsService{t: t}
}

func (s *ContactsService) List(ctx context.Context, page, pageSize int) (*ContactPage, error) {
	var out ContactPage
	path := fmt.Sprintf("/contacts?page=%d&page_size=%d", page, pageSize)
	if err := s.t.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ContactsService) Get(ctx context.Context, id string) (*Contact, error) {
	var out Contact
	if err := s.t.Do(ctx, http.MethodGet, "/contacts/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ContactsService) Create(ctx context.Context, c Contact) (*Contact, error) {
	var out Contact
	if err := s.t.Do(ctx, http.MethodPost, "/contacts", c, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ContactsService) Update(ctx context.Context, id string, c Contact) (*Contact, error) {
	var out Contact
	if err := s.t.Do(ctx, http.MethodPut, "/contacts/"+id, c, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ContactsService) Delete(ctx context.Context, id string) error {
	return s.t.Do(ctx, http.MethodDelete, "/contacts/"+id, nil, nil)
}
