package dnscheck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
)

var defaultServers = []string{"8.8.8.8:53", "1.1.1.1:53"}

// ErrNoAnswer is returned when no configured server produced a usable reply.
var ErrNoAnswer = errors.New("dns: no server answered")

// Checker runs lightweight DNS lookups against public resolvers.
type Checker struct {
	client  *dns.Client
	servers []string
}

// New builds a checker. An empty server list falls back to Google and Cloudflare.
func New(servers []string, timeout time.Duration) *Checker {
	if len(servers) == 0 {
		servers = defaultServers
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{
		client:  &dns.Client{Net: "udp", Timeout: timeout},
		servers: servers,
	}
}

// HostExists reports whether host resolves to an A or CNAME record. An NXDOMAIN answer
// is (false, nil); a lookup that could not be completed returns an error so callers can
// decide to proceed anyway.
func (c *Checker) HostExists(ctx context.Context, host string) (bool, error) {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" {
		return false, nil
	}
	resp, err := c.exchange(ctx, host, dns.TypeA)
	if err != nil {
		return false, err
	}
	switch resp.Rcode {
	case dns.RcodeNameError:
		return false, nil
	case dns.RcodeSuccess:
		return len(resp.Answer) > 0, nil
	default:
		return false, fmt.Errorf("dns: %s for %s", dns.RcodeToString[resp.Rcode], host)
	}
}

// HasMX reports whether domain publishes at least one MX record.
func (c *Checker) HasMX(ctx context.Context, domain string) (bool, error) {
	domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if domain == "" {
		return false, nil
	}
	resp, err := c.exchange(ctx, domain, dns.TypeMX)
	if err != nil {
		return false, err
	}
	if resp.Rcode != dns.RcodeSuccess {
		return false, nil
	}
	for _, rr := range resp.Answer {
		if _, ok := rr.(*dns.MX); ok {
			return true, nil
		}
	}
	return false, nil
}

func (c *Checker) exchange(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range c.servers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, _, err := c.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			continue
		}
		if resp == nil {
			continue
		}
		if resp.Rcode == dns.RcodeServerFailure || resp.Rcode == dns.RcodeRefused {
			lastErr = fmt.Errorf("dns: %s from %s", dns.RcodeToString[resp.Rcode], server)
			continue
		}
		return resp, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAnswer, lastErr)
	}
	return nil, ErrNoAnswer
}
