package requestdata

import (
	"context"

	"github.com/google/uuid"

	types "github.com/gridsight/gridsight-backend/internal/domain"
)

type requestDataKeyType struct{}

var requestDataKey = requestDataKeyType{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}

type RequestData struct {
	TokenString  string
	RefreshToken string
	UserID       uuid.UUID
	UserEmail    string
	UserName     string
	Role         types.UserRole
}

// Actor returns the best display identity for audit attribution: the user's
// name when known, then email, then "system".
func (rd *RequestData) Actor() string {
	if rd == nil {
		return "system"
	}
	if rd.UserName != "" {
		return rd.UserName
	}
	if rd.UserEmail != "" {
		return rd.UserEmail
	}
	return "system"
}
