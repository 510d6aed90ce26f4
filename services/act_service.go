package services

import (
	"context"
	"errors"

	"legispuls/htmltext"
	"legispuls/logger"
	"legispuls/sejm"
)

// ActDTO is one act in a listing response.
type ActDTO struct {
	ELI              string `json:"eli"`
	Title            string `json:"title"`
	Year             int    `json:"year"`
	Pos              int    `json:"pos"`
	Status           string `json:"status"`
	Type             string `json:"type"`
	Publisher        string `json:"publisher"`
	DisplayAddress   string `json:"displayAddress"`
	AnnouncementDate string `json:"announcementDate"`
	HasText          bool   `json:"hasText"`
}

// ActDetailsDTO adds the single-act fields plus the extracted plain text,
// which the frontend forwards to the AI summary endpoint as content.
type ActDetailsDTO struct {
	ActDTO
	Promulgation   string   `json:"promulgation,omitempty"`
	EntryIntoForce string   `json:"entryIntoForce,omitempty"`
	Keywords       []string `json:"keywords"`
	FullText       string   `json:"fullText,omitempty"`
}

// ActListing is the paged listing envelope.
type ActListing struct {
	TotalCount int      `json:"totalCount"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	Items      []ActDTO `json:"items"`
}

// ActService surfaces legislative acts from the Sejm ELI API.
type ActService struct {
	client *sejm.Client
}

func NewActService(client *sejm.Client) *ActService {
	return &ActService{client: client}
}

// List returns one page of acts for a publisher and year.
func (s *ActService) List(ctx context.Context, publisher string, year, page, pageSize int) (*ActListing, error) {
	if publisher == "" {
		return nil, validationErrorf("publisher is required")
	}
	if year <= 0 {
		return nil, validationErrorf("year is required")
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	resp, err := s.client.ListActs(ctx, publisher, year, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, newError(KindBackend, err)
	}

	items := make([]ActDTO, 0, len(resp.Items))
	for _, a := range resp.Items {
		items = append(items, mapAct(a))
	}
	return &ActListing{
		TotalCount: resp.TotalCount,
		Page:       page,
		PageSize:   pageSize,
		Items:      items,
	}, nil
}

// Get returns one act with its plain text when the ELI API carries an HTML
// version. Text extraction failures degrade to details without FullText.
func (s *ActService) Get(ctx context.Context, publisher string, year, pos int) (*ActDetailsDTO, error) {
	details, err := s.client.GetAct(ctx, publisher, year, pos)
	if err != nil {
		if errors.Is(err, sejm.ErrNotFound) {
			return nil, newError(KindNotFound, err)
		}
		return nil, newError(KindBackend, err)
	}

	dto := &ActDetailsDTO{
		ActDTO:         mapAct(details.Act),
		Promulgation:   details.Promulgation,
		EntryIntoForce: details.EntryIntoForce,
		Keywords:       details.Keywords,
	}
	if dto.Keywords == nil {
		dto.Keywords = []string{}
	}

	if details.TextHTML {
		htmlStr, err := s.client.GetActHTML(ctx, publisher, year, pos)
		if err == nil {
			if text, terr := htmltext.ExtractText(htmlStr); terr == nil {
				dto.FullText = text
			} else {
				logger.Log.Warnf("failed to extract text for %s: %v", details.ELI, terr)
			}
		} else {
			logger.Log.Warnf("failed to fetch act html for %s: %v", details.ELI, err)
		}
	}

	return dto, nil
}

func mapAct(a sejm.Act) ActDTO {
	return ActDTO{
		ELI:              a.ELI,
		Title:            a.Title,
		Year:             a.Year,
		Pos:              a.Pos,
		Status:           a.Status,
		Type:             a.Type,
		Publisher:        a.Publisher,
		DisplayAddress:   a.DisplayAddress,
		AnnouncementDate: a.AnnouncementDate,
		HasText:          a.TextHTML || a.TextPDF,
	}
}
