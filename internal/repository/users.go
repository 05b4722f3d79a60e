package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
)

// UpsertUser ensures a user node exists with the latest properties. The MERGE
// keeps the operation idempotent: re-running the same payload refreshes
// updatedAt and nothing else.
func (r *Repository) UpsertUser(ctx context.Context, user domain.User) (domain.User, error) {
	if user.ID == "" {
		return domain.User{}, errors.New("user id is required")
	}

	params := map[string]any{
		"id":    user.ID,
		"props": userProperties(user),
		"now":   formatTime(user.UpdatedAt),
	}

	res, err := r.client.ExecuteWrite(ctx, upsertUserCypher, params)
	if err != nil {
		return domain.User{}, fmt.Errorf("upsert user %s: %w", user.ID, err)
	}
	record, ok := res.First()
	if !ok {
		return user, nil
	}
	return userFromProps(toPropsMap(record["user"])), nil
}

// GetUser fetches a single user node by id. The second return value reports
// whether the user exists.
func (r *Repository) GetUser(ctx context.Context, id string) (domain.User, bool, error) {
	res, err := r.client.ExecuteRead(ctx, getUserCypher, map[string]any{"id": id})
	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user %s: %w", id, err)
	}
	record, ok := res.First()
	if !ok {
		return domain.User{}, false, nil
	}
	return userFromProps(toPropsMap(record["user"])), true, nil
}

// UserExists reports whether a user node with the given id is present.
func (r *Repository) UserExists(ctx context.Context, id string) (bool, error) {
	res, err := r.client.ExecuteRead(ctx, userExistsCypher, map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("check user %s: %w", id, err)
	}
	return !res.Empty(), nil
}

// DeleteUser removes a user node and detaches every edge touching it. The
// second return value reports whether a node was actually deleted.
func (r *Repository) DeleteUser(ctx context.Context, id string) (bool, error) {
	res, err := r.client.ExecuteWrite(ctx, deleteUserCypher, map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete user %s: %w", id, err)
	}
	record, ok := res.First()
	if !ok {
		return false, nil
	}
	return toInt(record["deleted"]) > 0, nil
}

// ListUsers returns users matching the provided filters, most recently
// updated first.
func (r *Repository) ListUsers(ctx context.Context, opts ListUsersOptions) ([]domain.User, error) {
	params := map[string]any{
		"email": opts.Email,
		"phone": opts.Phone,
		"limit": clampLimit(opts.Limit),
	}

	res, err := r.client.ExecuteRead(ctx, listUsersCypher, params)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]domain.User, 0, len(res.Records))
	for _, record := range res.Records {
		users = append(users, userFromProps(toPropsMap(record["user"])))
	}
	return users, nil
}

// userProperties builds the node property map. Optional attributes are
// omitted when empty so that absence never participates in link matching or
// clustering.
func userProperties(u domain.User) map[string]any {
	props := map[string]any{
		"name": u.Name,
	}
	if !u.CreatedAt.IsZero() {
		props["createdAt"] = formatTime(u.CreatedAt)
	}
	if u.Email != "" {
		props["email"] = u.Email
	}
	if u.Phone != "" {
		props["phone"] = u.Phone
	}
	if u.Address != nil && !u.Address.Empty() {
		props["address"] = u.Address.Canonical()
	}
	if len(u.PaymentMethods) > 0 {
		serialized := make([]string, 0, len(u.PaymentMethods))
		for _, pm := range u.PaymentMethods {
			if pm.Empty() {
				continue
			}
			serialized = append(serialized, pm.Canonical())
		}
		if len(serialized) > 0 {
			props["paymentMethods"] = serialized
		}
	}
	return props
}

const upsertUserCypher = `
MERGE (u:User {id: $id})
ON CREATE SET u.createdAt = $now
SET u += $props, u.updatedAt = $now
RETURN u{.*} AS user
`

const getUserCypher = `
MATCH (u:User {id: $id})
RETURN u{.*} AS user
`

const userExistsCypher = `
MATCH (u:User {id: $id})
RETURN u.id AS id
`

const deleteUserCypher = `
MATCH (u:User {id: $id})
DETACH DELETE u
RETURN count(u) AS deleted
`

const listUsersCypher = `
MATCH (u:User)
WHERE ($email = "" OR u.email = $email)
  AND ($phone = "" OR u.phone = $phone)
RETURN u{.*} AS user
ORDER BY u.updatedAt DESC
LIMIT $limit
`
