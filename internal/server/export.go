package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
)

// export streams the full graph snapshot as JSON or CSV, selected by the
// format query parameter.
func (h *Handlers) export(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "csv" {
		writeError(c, http.StatusBadRequest, "format must be json or csv")
		return
	}

	snapshot, err := h.service.Export(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "export", err)
		return
	}

	if format == "csv" {
		h.exportCSV(c, snapshot)
		return
	}
	c.JSON(http.StatusOK, snapshotResponse(snapshot))
}

func snapshotResponse(s domain.Snapshot) gin.H {
	users := make([]userResponse, 0, len(s.Users))
	for _, u := range s.Users {
		users = append(users, userFromDomain(u))
	}
	txs := make([]transactionResponse, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		txs = append(txs, transactionFromDomain(t))
	}
	edges := make([]graphEdgeResponse, 0, len(s.Relationships))
	for _, e := range s.Relationships {
		edges = append(edges, graphEdgeResponse{
			Source: e.Source,
			Target: e.Target,
			Kind:   e.Kind,
			Props:  e.Props,
		})
	}
	return gin.H{
		"users":             users,
		"transactions":      txs,
		"relationships":     edges,
		"userCount":         s.UserCount,
		"transactionCount":  s.TransactionCount,
		"relationshipCount": s.RelationshipCount,
		"exportedAt":        formatTime(s.ExportedAt),
	}
}

// exportCSV writes one section per entity kind, separated by blank lines.
func (h *Handlers) exportCSV(c *gin.Context, s domain.Snapshot) {
	filename := fmt.Sprintf("graph-export-%s.csv", s.ExportedAt.Format("20060102-150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)

	_ = w.Write([]string{"# users"})
	_ = w.Write([]string{"id", "name", "email", "phone", "street", "city", "country", "createdAt", "updatedAt"})
	for _, u := range s.Users {
		var addr domain.Address
		if u.Address != nil {
			addr = *u.Address
		}
		_ = w.Write([]string{
			u.ID, u.Name, u.Email, u.Phone,
			addr.Street, addr.City, addr.Country,
			formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
		})
	}

	_ = w.Write([]string{})
	_ = w.Write([]string{"# transactions"})
	_ = w.Write([]string{"id", "fromUserId", "toUserId", "amount", "currency", "status", "timestamp", "ipAddress", "deviceId", "description"})
	for _, t := range s.Transactions {
		_ = w.Write([]string{
			t.ID, t.FromUserID, t.ToUserID,
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
			t.Currency, t.Status,
			t.Timestamp.UTC().Format(time.RFC3339),
			t.IPAddress, t.DeviceID, t.Description,
		})
	}

	_ = w.Write([]string{})
	_ = w.Write([]string{"# relationships"})
	_ = w.Write([]string{"source", "target", "kind", "value"})
	for _, e := range s.Relationships {
		value := ""
		if e.Props != nil {
			if v, ok := e.Props["value"].(string); ok {
				value = v
			} else if v, ok := e.Props["transactionId"].(string); ok {
				value = v
			}
		}
		_ = w.Write([]string{e.Source, e.Target, e.Kind, value})
	}

	w.Flush()
}
