package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/beevik/etree"
)

// ExportTodos returns the caller's items as an XML document
func (h *Handler) ExportTodos(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	items, err := h.svc.ListForUser(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	doc := buildExport(actor.Username, items)
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="todo-items.xml"`)
	if _, err := doc.WriteTo(w); err != nil {
		h.log.Errorf("Failed to write XML export: %v", err)
	}
}

func buildExport(owner string, items []models.TodoItem) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("todoItems")
	root.CreateAttr("owner", owner)
	root.CreateAttr("count", strconv.Itoa(len(items)))

	for _, it := range items {
		el := root.CreateElement("todoItem")
		el.CreateAttr("id", strconv.FormatInt(it.ID, 10))
		el.CreateAttr("complete", strconv.FormatBool(it.IsComplete))
		el.CreateElement("description").SetText(it.Description)
		el.CreateElement("itemCategory").SetText(it.ItemCategory)
		el.CreateElement("quantity").SetText(strconv.Itoa(it.Quantity))
		el.CreateElement("storeName").SetText(it.StoreName)
		el.CreateElement("createdAt").SetText(it.CreatedAt.UTC().Format(time.RFC3339))
		el.CreateElement("updatedAt").SetText(it.UpdatedAt.UTC().Format(time.RFC3339))
	}

	doc.Indent(2)
	return doc
}
