package commands

import (
	"context"

	memora_errors "memora/pkg/errors"
)

type Proxy interface {
	Authorize(ctx context.Context, cmd Command) error
}

type ProxyFunc func(ctx context.Context, cmd Command) error

func (f ProxyFunc) Authorize(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

type ProxyChain struct {
	proxies []Proxy
}

func NewProxyChain(proxies ...Proxy) *ProxyChain {
	items := make([]Proxy, 0, len(proxies))
	for _, proxy := range proxies {
		if proxy != nil {
			items = append(items, proxy)
		}
	}
	return &ProxyChain{proxies: items}
}

func (p *ProxyChain) Authorize(ctx context.Context, cmd Command) error {
	if p == nil {
		return nil
	}
	for _, proxy := range p.proxies {
		if err := proxy.Authorize(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

// RequireActor rejects actor commands that carry no verified identity.
func RequireActor() Proxy {
	return ProxyFunc(func(ctx context.Context, cmd Command) error {
		ac, ok := cmd.(ActorCommand)
		if !ok {
			return nil
		}
		if !ac.ActorIdentity().Valid() {
			return memora_errors.ErrUnauthorized
		}
		return nil
	})
}
