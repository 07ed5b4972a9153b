package browser

import (
	"context"
	"fmt"
	"sync"
)

// fakeDriver stands in for the Playwright driver in tests. Each Launch
// hands out a fresh fakeConn.
type fakeDriver struct {
	mu        sync.Mutex
	launches  int
	launchErr error
	conns     []*fakeConn
}

func (d *fakeDriver) Launch(ctx context.Context, cfg LaunchConfig) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.launches++
	if d.launchErr != nil {
		return nil, &LaunchError{Kind: cfg.Kind, Err: d.launchErr}
	}
	conn := &fakeConn{connected: true}
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDriver) launchCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.launches
}

func (d *fakeDriver) lastConn() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

type fakeConn struct {
	mu         sync.Mutex
	connected  bool
	closed     bool
	newPageErr error
	tabs       []*fakeTab
}

func (c *fakeConn) NewPage() (Tab, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.newPageErr != nil {
		return nil, c.newPageErr
	}
	tab := &fakeTab{url: "about:blank", title: "blank"}
	c.tabs = append(c.tabs, tab)
	return tab, nil
}

func (c *fakeConn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.connected = false
	return nil
}

func (c *fakeConn) disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
}

// fakeTab records operations and returns scripted errors.
type fakeTab struct {
	mu       sync.Mutex
	url      string
	title    string
	content  string
	text     string
	shot     []byte
	closed   bool
	navErr   error
	clickErr error
}

func (t *fakeTab) Navigate(url string, opts NavigateOptions) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.navErr != nil {
		return t.navErr
	}
	t.url = url
	return nil
}

func (t *fakeTab) Click(selector string, opts ClickOptions) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clickErr
}

func (t *fakeTab) ClickText(text string) error {
	return nil
}

func (t *fakeTab) Type(selector, text string, opts TypeOptions) error {
	return nil
}

func (t *fakeTab) Text(selector string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text, nil
}

func (t *fakeTab) Content() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.content, nil
}

func (t *fakeTab) Screenshot(selector string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.shot == nil {
		return []byte("png"), nil
	}
	return t.shot, nil
}

func (t *fakeTab) WaitForSelector(selector string, timeout float64) error {
	return nil
}

func (t *fakeTab) Title() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title, nil
}

func (t *fakeTab) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url
}

func (t *fakeTab) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// errConnectionLost fabricates the automation library's connection-lost
// error text.
func errConnectionLost() error {
	return fmt.Errorf("failed: target closed")
}
