package test

import (
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/bls-dkg/pkg/party"
	"github.com/taurusgroup/bls-dkg/pkg/protocol"
)

// Network delivers every message to all parties but the sender. Messages are encoded with
// cbor and decoded once per recipient, so that no two handlers share a buffer.
type Network struct {
	parties          party.IDSlice
	listenChannels   map[party.ID]chan *protocol.Message
	done             chan struct{}
	closedListenChan chan *protocol.Message
	rule             Rule
	mtx              sync.Mutex
}

func NewNetwork(parties party.IDSlice, rule Rule) *Network {
	closed := make(chan *protocol.Message)
	close(closed)
	c := &Network{
		parties:          parties,
		listenChannels:   make(map[party.ID]chan *protocol.Message, len(parties)),
		closedListenChan: closed,
		rule:             rule,
	}
	return c
}

func (n *Network) init() {
	N := len(n.parties)
	for _, id := range n.parties {
		n.listenChannels[id] = make(chan *protocol.Message, N*N)
	}
	n.done = make(chan struct{})
}

func (n *Network) Next(id party.ID) <-chan *protocol.Message {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if len(n.listenChannels) == 0 {
		n.init()
	}
	c, ok := n.listenChannels[id]
	if !ok {
		return n.closedListenChan
	}
	return c
}

func (n *Network) Send(msg *protocol.Message) {
	data, err := cbor.Marshal(msg)
	if err != nil {
		panic(err)
	}
	n.mtx.Lock()
	defer n.mtx.Unlock()
	for id, c := range n.listenChannels {
		if !msg.IsFor(id) || c == nil {
			continue
		}
		var m protocol.Message
		if err = cbor.Unmarshal(data, &m); err != nil {
			panic(err)
		}
		if n.rule != nil {
			m.Data = n.rule.ModifyContent(m.From, id, m.RoundNumber, m.Data)
		}
		c <- &m
	}
}

func (n *Network) Done(id party.ID) chan struct{} {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if len(n.listenChannels) == 0 && n.done == nil {
		n.init()
	}
	if _, ok := n.listenChannels[id]; ok {
		close(n.listenChannels[id])
		delete(n.listenChannels, id)
		if len(n.listenChannels) == 0 {
			close(n.done)
		}
	}
	return n.done
}

func (n *Network) Quit(id party.ID) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	n.parties = n.parties.Remove(id)
}
