package shared

import "context"

type contextKey string

const (
	tenantKey contextKey = "tenant"
	actorKey  contextKey = "actor"
)

// ContextWithTenant stores the tenant identifier in the context.
// Tenant state is always carried explicitly, never read from globals.
func ContextWithTenant(ctx context.Context, tenantID int64) context.Context {
	return context.WithValue(ctx, tenantKey, tenantID)
}

// TenantFromContext returns the tenant identifier, or 0 when absent.
func TenantFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(tenantKey).(int64)
	return id
}

// ContextWithActor stores the acting user identifier in the context.
func ContextWithActor(ctx context.Context, actorID int64) context.Context {
	return context.WithValue(ctx, actorKey, actorID)
}

// ActorFromContext returns the acting user identifier, or 0 when absent.
func ActorFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(actorKey).(int64)
	return id
}
