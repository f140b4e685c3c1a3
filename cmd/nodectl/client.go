package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiEnvelope mirrors control.envelope — the uniform JSON response
// shape every control-plane endpoint returns.
type apiEnvelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// nodeClient is a thin HTTP client against one instance's control
// plane. There is no library in the dependency set for a plain
// outbound JSON request/response cycle, so this talks net/http
// directly — the one deliberate stdlib exception in this command.
type nodeClient struct {
	address  string
	instance string
	http     *http.Client
}

func newNodeClient(address, instance string) *nodeClient {
	return &nodeClient{
		address:  address,
		instance: instance,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *nodeClient) url(verb string) string {
	return fmt.Sprintf("%s/api/v1/%s/%s", c.address, c.instance, verb)
}

func (c *nodeClient) do(method, verb string, body interface{}) (*apiEnvelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.url(verb), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("nodectl: decoding response: %w", err)
	}

	if env.Status == "error" {
		return &env, fmt.Errorf("nodectl: %s", env.Message)
	}

	return &env, nil
}

func (c *nodeClient) Start() error {
	_, err := c.do(http.MethodPut, "start", nil)
	return err
}

func (c *nodeClient) Stop() error {
	_, err := c.do(http.MethodDelete, "stop", nil)
	return err
}

func (c *nodeClient) Status() (*apiEnvelope, error) {
	return c.do(http.MethodGet, "status", nil)
}
