package notion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// Brief is a drafted deliverable ready for publication to a shared Notion
// database. Body is plain prose; blank lines split it into paragraphs.
type Brief struct {
	EntityID     string
	Title        string
	Body         string
	Workflow     string
	Completeness float64
	Health       int
}

// PublishBrief upserts the brief's page in the given database and returns
// the page ID. When a page for the same entity and workflow already exists
// its properties are refreshed in place instead of creating a duplicate;
// body blocks are written only on first publish.
func PublishBrief(ctx context.Context, c Client, dbID string, b Brief) (string, error) {
	if b.Title == "" {
		return "", eris.New("notion: brief title is required")
	}

	existing, err := findBrief(ctx, c, dbID, b.EntityID, b.Workflow)
	if err != nil {
		return "", err
	}
	if existing != "" {
		page, err := c.UpdatePage(ctx, existing, &notionapi.PageUpdateRequest{
			Properties: buildBriefProperties(b),
		})
		if err != nil {
			return "", eris.Wrap(err, fmt.Sprintf("notion: republish brief for %s", b.EntityID))
		}
		return string(page.ID), nil
	}

	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(dbID),
		},
		Properties: buildBriefProperties(b),
		Children:   buildBriefBlocks(b.Body),
	}

	page, err := c.CreatePage(ctx, req)
	if err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("notion: publish brief for %s", b.EntityID))
	}
	return string(page.ID), nil
}

// findBrief locates a previously published page for the entity, matching on
// workflow when the brief carries one. Returns "" when no page matches.
func findBrief(ctx context.Context, c Client, dbID, entityID, workflow string) (string, error) {
	resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Entity",
			RichText: &notionapi.TextFilterCondition{Equals: entityID},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("notion: find brief for %s", entityID))
	}
	for _, p := range resp.Results {
		if workflow == "" || pageWorkflow(p) == workflow {
			return string(p.ID), nil
		}
	}
	return "", nil
}

func pageWorkflow(p notionapi.Page) string {
	if prop, ok := p.Properties["Workflow"]; ok {
		if sp, ok := prop.(*notionapi.SelectProperty); ok {
			return sp.Select.Name
		}
	}
	return ""
}

// buildBriefProperties converts a Brief to Notion page properties. Title
// becomes the title property; everything else is rich_text, select, or number.
func buildBriefProperties(b Brief) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: b.Title}},
			},
		},
		"Entity": notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: b.EntityID}},
			},
		},
		"Completeness": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: b.Completeness,
		},
		"Health": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(b.Health),
		},
	}
	if b.Workflow != "" {
		props["Workflow"] = notionapi.SelectProperty{
			Type: notionapi.PropertyTypeSelect,
			Select: notionapi.Option{
				Name: b.Workflow,
			},
		}
	}
	return props
}

// buildBriefBlocks splits the brief body on blank lines and renders each
// chunk as a paragraph block.
func buildBriefBlocks(body string) []notionapi.Block {
	var blocks []notionapi.Block
	for _, chunk := range strings.Split(body, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		blocks = append(blocks, &notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeParagraph,
			},
			Paragraph: notionapi.Paragraph{
				RichText: []notionapi.RichText{
					{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: chunk}},
				},
			},
		})
	}
	return blocks
}
