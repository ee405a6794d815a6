package client

import (
	"github.com/openshelf/shelfd/rpc/common"
	"github.com/openshelf/shelfd/rpc/serializer"
	"github.com/openshelf/shelfd/rpc/transport"
)

// NewAuthClient creates a client for the auth channel.
func NewAuthClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*AuthClient, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &AuthClient{
		rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

// AuthClient is the typed client for the auth channel.
type AuthClient struct {
	rpcClientAdapter
}

// Close closes the underlying transport.
func (c *AuthClient) Close() error {
	return c.transport.Close()
}

// Login authenticates and returns the resulting session.
func (c *AuthClient) Login(email, password string) (common.Session, error) {
	return invokeDecoded[common.Session](&c.rpcClientAdapter, common.NewLoginRequest(email, password))
}

// Logout clears the server session.
func (c *AuthClient) Logout() error {
	_, err := c.invoke(common.NewRequest(common.OpAuthLogout))
	return err
}

// State returns the current session.
func (c *AuthClient) State() (common.Session, error) {
	return invokeDecoded[common.Session](&c.rpcClientAdapter, common.NewRequest(common.OpAuthState))
}

// RequestReset starts the password reset flow for a registered email.
func (c *AuthClient) RequestReset(email string) error {
	req := common.NewRequest(common.OpAuthRequestReset)
	req.Query = email
	_, err := c.invoke(req)
	return err
}

// VerifyCode submits the mailed verification code.
func (c *AuthClient) VerifyCode(email, code string) error {
	_, err := c.invoke(common.NewResetRequest(common.OpAuthVerifyCode, email, code))
	return err
}

// CompleteReset sets the new password after a verified code.
func (c *AuthClient) CompleteReset(email, newPassword string) error {
	_, err := c.invoke(common.NewResetRequest(common.OpAuthCompleteReset, email, newPassword))
	return err
}
