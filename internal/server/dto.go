package server

import (
	"errors"
	"time"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
	"github.com/manas-yu/user-transaction-visualizer/internal/service"
)

// --- Request DTOs ---

type addressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type paymentMethodRequest struct {
	Type     string `json:"type"`
	Last4    string `json:"last4"`
	Provider string `json:"provider"`
}

type userRequest struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	Phone          string                 `json:"phone"`
	Address        *addressRequest        `json:"address"`
	PaymentMethods []paymentMethodRequest `json:"paymentMethods"`
}

func (req userRequest) toInput() service.UserInput {
	input := service.UserInput{
		ID:    req.ID,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if req.Address != nil {
		input.Address = &domain.Address{
			Street:  req.Address.Street,
			City:    req.Address.City,
			Country: req.Address.Country,
		}
	}
	for _, pm := range req.PaymentMethods {
		input.PaymentMethods = append(input.PaymentMethods, domain.PaymentMethod{
			Type:     pm.Type,
			Last4:    pm.Last4,
			Provider: pm.Provider,
		})
	}
	return input
}

type locationRequest struct {
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type transactionRequest struct {
	ID          string           `json:"id"`
	FromUserID  string           `json:"fromUserId"`
	ToUserID    string           `json:"toUserId"`
	Amount      float64          `json:"amount"`
	Currency    string           `json:"currency"`
	Status      string           `json:"status"`
	Timestamp   string           `json:"timestamp"`
	IPAddress   string           `json:"ipAddress"`
	DeviceID    string           `json:"deviceId"`
	Location    *locationRequest `json:"location"`
	Description string           `json:"description"`
}

func (req transactionRequest) toInput() (service.TransactionInput, error) {
	input := service.TransactionInput{
		ID:          req.ID,
		FromUserID:  req.FromUserID,
		ToUserID:    req.ToUserID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Status:      req.Status,
		IPAddress:   req.IPAddress,
		DeviceID:    req.DeviceID,
		Description: req.Description,
	}
	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return service.TransactionInput{}, errors.New("invalid timestamp")
		}
		input.Timestamp = &ts
	}
	if req.Location != nil {
		input.Location = &domain.Location{
			City:    req.Location.City,
			Country: req.Location.Country,
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
		}
	}
	return input, nil
}

// --- Response DTOs ---

type addressResponse struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

type paymentMethodResponse struct {
	Type     string `json:"type,omitempty"`
	Last4    string `json:"last4,omitempty"`
	Provider string `json:"provider,omitempty"`
}

type userResponse struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Email          string                  `json:"email,omitempty"`
	Phone          string                  `json:"phone,omitempty"`
	Address        *addressResponse        `json:"address,omitempty"`
	PaymentMethods []paymentMethodResponse `json:"paymentMethods,omitempty"`
	CreatedAt      string                  `json:"createdAt,omitempty"`
	UpdatedAt      string                  `json:"updatedAt,omitempty"`
}

func userFromDomain(u domain.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: formatTime(u.CreatedAt),
		UpdatedAt: formatTime(u.UpdatedAt),
	}
	if u.Address != nil && !u.Address.Empty() {
		resp.Address = &addressResponse{
			Street:  u.Address.Street,
			City:    u.Address.City,
			Country: u.Address.Country,
		}
	}
	for _, pm := range u.PaymentMethods {
		resp.PaymentMethods = append(resp.PaymentMethods, paymentMethodResponse{
			Type:     pm.Type,
			Last4:    pm.Last4,
			Provider: pm.Provider,
		})
	}
	return resp
}

type locationResponse struct {
	City    string  `json:"city,omitempty"`
	Country string  `json:"country,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

type transactionResponse struct {
	ID          string            `json:"id"`
	FromUserID  string            `json:"fromUserId,omitempty"`
	ToUserID    string            `json:"toUserId,omitempty"`
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	Status      string            `json:"status"`
	Timestamp   string            `json:"timestamp"`
	IPAddress   string            `json:"ipAddress,omitempty"`
	DeviceID    string            `json:"deviceId,omitempty"`
	Location    *locationResponse `json:"location,omitempty"`
	Description string            `json:"description,omitempty"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	UpdatedAt   string            `json:"updatedAt,omitempty"`
}

func transactionFromDomain(t domain.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          t.ID,
		FromUserID:  t.FromUserID,
		ToUserID:    t.ToUserID,
		Amount:      t.Amount,
		Currency:    t.Currency,
		Status:      t.Status,
		Timestamp:   formatTime(t.Timestamp),
		IPAddress:   t.IPAddress,
		DeviceID:    t.DeviceID,
		Description: t.Description,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
	if t.Location != nil && !t.Location.Empty() {
		resp.Location = &locationResponse{
			City:    t.Location.City,
			Country: t.Location.Country,
			Lat:     t.Location.Lat,
			Lng:     t.Location.Lng,
		}
	}
	return resp
}

type connectedUserResponse struct {
	User     userResponse `json:"user"`
	EdgeKind string       `json:"edgeKind"`
	Shared   string       `json:"shared"`
}

type involvedTransactionResponse struct {
	Transaction transactionResponse `json:"transaction"`
	Role        string              `json:"role"`
}

type directTransferResponse struct {
	Counterparty  userResponse `json:"counterparty"`
	Direction     string       `json:"direction"`
	TransactionID string       `json:"transactionId"`
	Amount        float64      `json:"amount"`
	Currency      string       `json:"currency"`
	Timestamp     string       `json:"timestamp"`
}

type userConnectionsResponse struct {
	User            userResponse                  `json:"user"`
	ConnectedUsers  []connectedUserResponse       `json:"connectedUsers"`
	Transactions    []involvedTransactionResponse `json:"transactions"`
	DirectTransfers []directTransferResponse      `json:"directTransfers"`
}

func userConnectionsFromDomain(conns domain.UserConnections) userConnectionsResponse {
	resp := userConnectionsResponse{
		User:            userFromDomain(conns.User),
		ConnectedUsers:  []connectedUserResponse{},
		Transactions:    []involvedTransactionResponse{},
		DirectTransfers: []directTransferResponse{},
	}
	for _, cu := range conns.ConnectedUsers {
		resp.ConnectedUsers = append(resp.ConnectedUsers, connectedUserResponse{
			User:     userFromDomain(cu.User),
			EdgeKind: cu.EdgeKind,
			Shared:   cu.Shared,
		})
	}
	for _, it := range conns.Transactions {
		resp.Transactions = append(resp.Transactions, involvedTransactionResponse{
			Transaction: transactionFromDomain(it.Transaction),
			Role:        it.Role,
		})
	}
	for _, dt := range conns.DirectTransfers {
		resp.DirectTransfers = append(resp.DirectTransfers, directTransferResponse{
			Counterparty:  userFromDomain(dt.Counterparty),
			Direction:     dt.Direction,
			TransactionID: dt.TransactionID,
			Amount:        dt.Amount,
			Currency:      dt.Currency,
			Timestamp:     formatTime(dt.Timestamp),
		})
	}
	return resp
}

type involvedUserResponse struct {
	User userResponse `json:"user"`
	Role string       `json:"role"`
}

type relatedTransactionResponse struct {
	Transaction transactionResponse `json:"transaction"`
	EdgeKind    string              `json:"edgeKind"`
	Shared      string              `json:"shared"`
}

type transactionConnectionsResponse struct {
	Transaction         transactionResponse          `json:"transaction"`
	InvolvedUsers       []involvedUserResponse       `json:"involvedUsers"`
	RelatedTransactions []relatedTransactionResponse `json:"relatedTransactions"`
}

func transactionConnectionsFromDomain(conns domain.TransactionConnections) transactionConnectionsResponse {
	resp := transactionConnectionsResponse{
		Transaction:         transactionFromDomain(conns.Transaction),
		InvolvedUsers:       []involvedUserResponse{},
		RelatedTransactions: []relatedTransactionResponse{},
	}
	for _, iu := range conns.InvolvedUsers {
		resp.InvolvedUsers = append(resp.InvolvedUsers, involvedUserResponse{
			User: userFromDomain(iu.User),
			Role: iu.Role,
		})
	}
	for _, rt := range conns.RelatedTransactions {
		resp.RelatedTransactions = append(resp.RelatedTransactions, relatedTransactionResponse{
			Transaction: transactionFromDomain(rt.Transaction),
			EdgeKind:    rt.EdgeKind,
			Shared:      rt.Shared,
		})
	}
	return resp
}

type graphNodeResponse struct {
	ID    string         `json:"id"`
	Kind  string         `json:"kind"`
	Label string         `json:"label"`
	Props map[string]any `json:"props,omitempty"`
}

type graphEdgeResponse struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Kind   string         `json:"kind"`
	Props  map[string]any `json:"props,omitempty"`
}

type graphViewResponse struct {
	Nodes         []graphNodeResponse `json:"nodes"`
	Edges         []graphEdgeResponse `json:"edges"`
	NodeCount     int                 `json:"nodeCount"`
	EdgeCount     int                 `json:"edgeCount"`
	DroppedEdges  int                 `json:"droppedEdges"`
	FailedFetches int                 `json:"failedFetches"`
}

func graphViewFromDomain(view domain.GraphView) graphViewResponse {
	resp := graphViewResponse{
		Nodes:         []graphNodeResponse{},
		Edges:         []graphEdgeResponse{},
		NodeCount:     view.NodeCount,
		EdgeCount:     view.EdgeCount,
		DroppedEdges:  view.DroppedEdges,
		FailedFetches: view.FailedFetches,
	}
	for _, n := range view.Nodes {
		resp.Nodes = append(resp.Nodes, graphNodeResponse{
			ID:    n.ID,
			Kind:  n.Kind,
			Label: n.Label,
			Props: n.Props,
		})
	}
	for _, e := range view.Edges {
		resp.Edges = append(resp.Edges, graphEdgeResponse{
			Source: e.Source,
			Target: e.Target,
			Kind:   e.Kind,
			Props:  e.Props,
		})
	}
	return resp
}

type pathNodeResponse struct {
	ID    string         `json:"id"`
	Kind  string         `json:"kind"`
	Props map[string]any `json:"props,omitempty"`
}

type pathEdgeResponse struct {
	Kind  string         `json:"kind"`
	Props map[string]any `json:"props,omitempty"`
}

type pathStepResponse struct {
	From pathNodeResponse `json:"from"`
	Edge pathEdgeResponse `json:"edge"`
	To   pathNodeResponse `json:"to"`
}

type shortestPathResponse struct {
	SourceUserID string             `json:"sourceUserId"`
	TargetUserID string             `json:"targetUserId"`
	PathExists   bool               `json:"pathExists"`
	PathLength   int                `json:"pathLength"`
	Path         []pathStepResponse `json:"path"`
}

func shortestPathFromDomain(path domain.ShortestPath) shortestPathResponse {
	resp := shortestPathResponse{
		SourceUserID: path.SourceUserID,
		TargetUserID: path.TargetUserID,
		PathExists:   path.Exists,
		PathLength:   path.Length,
		Path:         []pathStepResponse{},
	}
	for _, step := range path.Steps {
		resp.Path = append(resp.Path, pathStepResponse{
			From: pathNodeResponse{ID: step.From.ID, Kind: step.From.Kind, Props: step.From.Props},
			Edge: pathEdgeResponse{Kind: step.Edge.Kind, Props: step.Edge.Props},
			To:   pathNodeResponse{ID: step.To.ID, Kind: step.To.Kind, Props: step.To.Props},
		})
	}
	return resp
}

type clusterResponse struct {
	Value          any      `json:"value"`
	Size           int      `json:"size"`
	TransactionIDs []string `json:"transactionIds"`
}
