package store

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/poi-sync/internal/model"
	"github.com/sells-group/poi-sync/pkg/notion"
)

// NotionSchema names the database properties each record field maps to.
type NotionSchema struct {
	Title       string
	Category    string
	Description string
	Location    string
	Links       string
	Images      string
	Audio       string
}

// DefaultNotionSchema returns the property names of the locations database.
func DefaultNotionSchema() NotionSchema {
	return NotionSchema{
		Title:       "Title",
		Category:    "Category",
		Description: "Detailed Description",
		Location:    "Location",
		Links:       "Links",
		Images:      "Images",
		Audio:       "Audio",
	}
}

// NotionStore implements LocationStore on a Notion database. Deleting a
// record archives its page.
type NotionStore struct {
	client notion.Client
	dbID   string
	schema NotionSchema
}

// NewNotion returns a NotionStore over the database dbID.
func NewNotion(client notion.Client, dbID string, schema NotionSchema) *NotionStore {
	return &NotionStore{client: client, dbID: dbID, schema: schema}
}

func (s *NotionStore) FindByTitle(ctx context.Context, title string) (*model.RemoteRecord, error) {
	pages, err := notion.QueryByTitle(ctx, s.client, s.dbID, s.schema.Title, title, 2)
	if err != nil {
		return nil, eris.Wrapf(err, "notion store: find %q", title)
	}

	matches := make([]model.RemoteRecord, 0, len(pages))
	for _, p := range pages {
		if p.Archived {
			continue
		}
		matches = append(matches, s.fromPage(p))
	}
	return pickOne(matches, title)
}

func (s *NotionStore) Create(ctx context.Context, rec model.RemoteRecord) (model.RemoteRecord, error) {
	page, err := s.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(s.dbID),
		},
		Properties: s.createProperties(rec),
	})
	if err != nil {
		return model.RemoteRecord{}, eris.Wrapf(err, "notion store: create %q", rec.Title)
	}
	rec.ID = string(page.ID)
	return rec, nil
}

func (s *NotionStore) Update(ctx context.Context, id string, patch model.RecordPatch) (model.RemoteRecord, error) {
	page, err := s.client.UpdatePage(ctx, id, &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			s.schema.Description: notionapi.RichTextProperty{RichText: notion.Text(patch.DetailedDescription)},
			s.schema.Location:    notionapi.RichTextProperty{RichText: notion.Text(patch.LocationString)},
		},
	})
	if err != nil {
		var apiErr *notionapi.Error
		if eris.As(err, &apiErr) && apiErr.Status == 404 {
			return model.RemoteRecord{}, eris.Wrapf(ErrNotFound, "notion store: update %s", id)
		}
		return model.RemoteRecord{}, eris.Wrapf(err, "notion store: update %s", id)
	}
	return s.fromPage(*page), nil
}

func (s *NotionStore) DeleteWhere(ctx context.Context, category string) (int, error) {
	pages, err := notion.QueryBySelect(ctx, s.client, s.dbID, s.schema.Category, category)
	if err != nil {
		return 0, eris.Wrapf(err, "notion store: delete category %q", category)
	}

	n := 0
	for _, p := range pages {
		if err := notion.ArchivePage(ctx, s.client, string(p.ID)); err != nil {
			return n, eris.Wrapf(err, "notion store: delete category %q", category)
		}
		n++
	}
	return n, nil
}

// List returns the records of category in database order.
func (s *NotionStore) List(ctx context.Context, category string) ([]model.RemoteRecord, error) {
	pages, err := notion.QueryBySelect(ctx, s.client, s.dbID, s.schema.Category, category)
	if err != nil {
		return nil, eris.Wrapf(err, "notion store: list %q", category)
	}
	out := make([]model.RemoteRecord, 0, len(pages))
	for _, p := range pages {
		out = append(out, s.fromPage(p))
	}
	return out, nil
}

func (s *NotionStore) Close() error { return nil }

// createProperties leaves the media properties out, so they start empty.
func (s *NotionStore) createProperties(rec model.RemoteRecord) notionapi.Properties {
	return notionapi.Properties{
		s.schema.Title:       notionapi.TitleProperty{Title: notion.Text(rec.Title)},
		s.schema.Category:    notionapi.SelectProperty{Select: notionapi.Option{Name: rec.Category}},
		s.schema.Description: notionapi.RichTextProperty{RichText: notion.Text(rec.DetailedDescription)},
		s.schema.Location:    notionapi.RichTextProperty{RichText: notion.Text(rec.LocationString)},
	}
}

func (s *NotionStore) fromPage(p notionapi.Page) model.RemoteRecord {
	return model.RemoteRecord{
		ID:                  string(p.ID),
		Title:               notion.PlainText(p.Properties, s.schema.Title),
		Category:            notion.PlainText(p.Properties, s.schema.Category),
		DetailedDescription: notion.PlainText(p.Properties, s.schema.Description),
		LocationString:      notion.PlainText(p.Properties, s.schema.Location),
		Links:               optional(notion.PlainText(p.Properties, s.schema.Links)),
		Images:              optional(notion.PlainText(p.Properties, s.schema.Images)),
		Audio:               optional(notion.PlainText(p.Properties, s.schema.Audio)),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
