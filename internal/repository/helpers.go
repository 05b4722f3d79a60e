package repository

import (
	"fmt"
	"time"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func toInt(val any) int {
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func toTimePtr(val any) *time.Time {
	switch v := val.(type) {
	case time.Time:
		return &v
	case string:
		if v == "" {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &parsed
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return &parsed
		}
	}
	return nil
}

func toStringSlice(val any) []string {
	raw, ok := val.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s := toString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toPropsMap(val any) map[string]any {
	if m, ok := val.(map[string]any); ok {
		return m
	}
	return nil
}

func userFromProps(props map[string]any) domain.User {
	u := domain.User{
		ID:    toString(props["id"]),
		Name:  toString(props["name"]),
		Email: toString(props["email"]),
		Phone: toString(props["phone"]),
	}
	u.Address = domain.ParseAddress(toString(props["address"]))
	for _, raw := range toStringSlice(props["paymentMethods"]) {
		if pm, ok := domain.ParsePaymentMethod(raw); ok {
			u.PaymentMethods = append(u.PaymentMethods, pm)
		}
	}
	if t := toTimePtr(props["createdAt"]); t != nil {
		u.CreatedAt = *t
	}
	if t := toTimePtr(props["updatedAt"]); t != nil {
		u.UpdatedAt = *t
	}
	return u
}

func transactionFromProps(props map[string]any) domain.Transaction {
	tx := domain.Transaction{
		ID:          toString(props["id"]),
		FromUserID:  toString(props["fromUserId"]),
		ToUserID:    toString(props["toUserId"]),
		Amount:      toFloat64(props["amount"]),
		Currency:    toString(props["currency"]),
		Status:      toString(props["status"]),
		IPAddress:   toString(props["ipAddress"]),
		DeviceID:    toString(props["deviceId"]),
		Description: toString(props["description"]),
	}
	tx.Location = domain.ParseLocation(toString(props["location"]))
	if t := toTimePtr(props["timestamp"]); t != nil {
		tx.Timestamp = *t
	}
	if t := toTimePtr(props["createdAt"]); t != nil {
		tx.CreatedAt = *t
	}
	if t := toTimePtr(props["updatedAt"]); t != nil {
		tx.UpdatedAt = *t
	}
	return tx
}
