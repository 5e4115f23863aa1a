package directory

// Package directory talks to the user pool behind the login flow. Stats are
// computed by listing users and bucketing on the role attribute; role
// assignment writes the same attribute back.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/beaconworks/kb-chat-api/internal/apperr"
	domainauth "github.com/beaconworks/kb-chat-api/internal/domain/auth"
	"github.com/beaconworks/kb-chat-api/internal/ports"
)

// roleAttribute is the custom attribute carrying the role on each user.
const roleAttribute = "custom:role"

// pageSize for ListUsers. 60 is the service maximum.
const pageSize = 60

// api is the subset of the identity provider client the directory needs.
type api interface {
	ListUsers(ctx context.Context, params *cognitoidentityprovider.ListUsersInput,
		optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ListUsersOutput, error)
	AdminUpdateUserAttributes(ctx context.Context, params *cognitoidentityprovider.AdminUpdateUserAttributesInput,
		optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminUpdateUserAttributesOutput, error)
}

// Directory counts and updates users in the pool.
type Directory struct {
	client  api
	poolID  string
	timeout time.Duration
	logger  *slog.Logger
}

// Options configure a Directory.
type Options struct {
	UserPoolID string
	Region     string
	Timeout    time.Duration
	Logger     *slog.Logger
}

var _ ports.Directory = (*Directory)(nil)

// New builds a Directory backed by the real service client. Credentials come
// from the default chain (env, shared config, instance role).
func New(ctx context.Context, opts Options) (*Directory, error) {
	if opts.UserPoolID == "" {
		return nil, apperr.Misconfigured("user pool is not configured")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newWithClient(cognitoidentityprovider.NewFromConfig(cfg), opts), nil
}

func newWithClient(client api, opts Options) *Directory {
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Directory{
		client:  client,
		poolID:  opts.UserPoolID,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
}

// CountUsersByRole pages through the pool and buckets users on the role
// attribute. Users with no role attribute, or with a value outside the known
// set, are counted under "unassigned".
func (d *Directory) CountUsersByRole(ctx context.Context) (ports.UserStats, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	stats := ports.UserStats{UsersByRole: map[string]int{}}

	input := &cognitoidentityprovider.ListUsersInput{
		UserPoolId: &d.poolID,
		Limit:      ptrInt32(pageSize),
	}
	for {
		out, err := d.client.ListUsers(ctx, input)
		if err != nil {
			return ports.UserStats{}, apperr.Unavailable("user statistics are temporarily unavailable").
				WithCause(fmt.Errorf("list users: %w", err))
		}

		for _, user := range out.Users {
			stats.TotalUsers++
			role := domainauth.RoleFromClaim(attributeValue(user.Attributes, roleAttribute))
			if role == domainauth.RoleNone {
				stats.UsersByRole["unassigned"]++
				continue
			}
			stats.UsersByRole[string(role)]++
		}

		if out.PaginationToken == nil || *out.PaginationToken == "" {
			break
		}
		input.PaginationToken = out.PaginationToken
	}

	return stats, nil
}

// AssignDefaultRole writes the user-tier role onto a user that has none yet.
// It is called after signup confirmation so new accounts can ask questions
// without an operator touching the pool.
func (d *Directory) AssignDefaultRole(ctx context.Context, username string) error {
	if username == "" {
		return apperr.InvalidRequest("username is required")
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	name := roleAttribute
	value := string(domainauth.RoleUser)
	_, err := d.client.AdminUpdateUserAttributes(ctx, &cognitoidentityprovider.AdminUpdateUserAttributesInput{
		UserPoolId: &d.poolID,
		Username:   &username,
		UserAttributes: []types.AttributeType{
			{Name: &name, Value: &value},
		},
	})
	if err != nil {
		return apperr.Unavailable("role assignment is temporarily unavailable").
			WithCause(fmt.Errorf("assign role to %s: %w", username, err))
	}

	d.logger.Info("assigned default role", "username", username, "role", value)
	return nil
}

func attributeValue(attrs []types.AttributeType, name string) string {
	for _, attr := range attrs {
		if attr.Name != nil && *attr.Name == name && attr.Value != nil {
			return *attr.Value
		}
	}
	return ""
}

func ptrInt32(v int32) *int32 { return &v }
