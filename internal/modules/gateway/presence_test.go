package gateway

import (
	"fmt"
	"sync"
	"testing"
)

func TestPresenceSingleConnection(t *testing.T) {
	p := NewPresence()
	p.Register("u1", "c1")

	if !p.Online("u1") {
		t.Fatal("account should be online after register")
	}
	if got := p.ConnectionsOf("u1"); len(got) != 1 || got[0] != "c1" {
		t.Fatalf("connections %v, want [c1]", got)
	}
	if !p.Deregister("u1", "c1") {
		t.Fatal("removing the last connection must report offline")
	}
	if p.Online("u1") {
		t.Fatal("account still online after last connection left")
	}
}

func TestPresenceMultipleTabs(t *testing.T) {
	p := NewPresence()
	p.Register("u1", "c1")
	p.Register("u1", "c2")
	p.Register("u1", "c3")

	if got := p.ConnectionsOf("u1"); len(got) != 3 || got[0] != "c1" || got[2] != "c3" {
		t.Fatalf("connections %v, want registration order [c1 c2 c3]", got)
	}
	if p.Deregister("u1", "c2") {
		t.Fatal("offline reported while two tabs remain")
	}
	if p.Deregister("u1", "c1") {
		t.Fatal("offline reported while one tab remains")
	}
	if !p.Deregister("u1", "c3") {
		t.Fatal("last tab leaving must report offline")
	}
}

func TestPresenceOfflineFiresOnce(t *testing.T) {
	p := NewPresence()
	p.Register("u1", "c1")

	if !p.Deregister("u1", "c1") {
		t.Fatal("first deregister must report offline")
	}
	if p.Deregister("u1", "c1") {
		t.Fatal("second deregister of the same connection reported offline again")
	}
	if p.Deregister("u1", "never-registered") {
		t.Fatal("unknown connection reported offline")
	}
}

func TestPresenceDuplicateRegisterIsNoop(t *testing.T) {
	p := NewPresence()
	p.Register("u1", "c1")
	p.Register("u1", "c1")

	if got := p.ConnectionsOf("u1"); len(got) != 1 {
		t.Fatalf("connections %v, want a single entry", got)
	}
	if !p.Deregister("u1", "c1") {
		t.Fatal("single deregister must take the account offline")
	}
}

func TestPresenceCountsAccountsNotConnections(t *testing.T) {
	p := NewPresence()
	p.Register("u1", "c1")
	p.Register("u1", "c2")
	p.Register("u2", "c3")

	if got := p.Count(); got != 2 {
		t.Fatalf("count %d, want 2 distinct accounts", got)
	}
}

func TestPresenceConnectionsOfReturnsCopy(t *testing.T) {
	p := NewPresence()
	p.Register("u1", "c1")
	p.Register("u1", "c2")

	got := p.ConnectionsOf("u1")
	got[0] = "tampered"
	if again := p.ConnectionsOf("u1"); again[0] != "c1" {
		t.Fatal("registry state leaked through the returned slice")
	}
}

func TestPresenceConcurrentChurn(t *testing.T) {
	p := NewPresence()
	var wg sync.WaitGroup
	offline := make(chan struct{}, 64)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := fmt.Sprintf("c%d", i)
			p.Register("u1", conn)
			if p.Deregister("u1", conn) {
				offline <- struct{}{}
			}
		}(i)
	}
	wg.Wait()
	close(offline)

	if p.Online("u1") {
		t.Fatal("account online after every connection left")
	}
	var transitions int
	for range offline {
		transitions++
	}
	if transitions == 0 {
		t.Fatal("no offline transition observed")
	}
}
