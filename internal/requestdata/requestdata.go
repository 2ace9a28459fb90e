package requestdata

import (
	"context"

	"github.com/google/uuid"
)

var requestDataKey = struct{}{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData carries the already-authorized editor identity resolved by the
// identity collaborator. Role semantics are decided upstream; this core only
// records what it was handed.
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
	Role        string
}
