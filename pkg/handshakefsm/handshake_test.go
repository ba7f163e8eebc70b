// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshakefsm

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/coretls/tlshandshake/pkg/crypto/ciphersuite"
	"github.com/coretls/tlshandshake/pkg/protocol"
	"github.com/coretls/tlshandshake/pkg/session"
)

// wireRecord is one record handed across testPipe.
type wireRecord struct {
	contentType protocol.ContentType
	payload     []byte
}

// testPipe is a synchronous, in-memory RecordLayer: writes on one end
// deliver directly to the other end's reads, so driving both sides'
// Negotiate loops in separate goroutines exercises the real message
// ordering without a real socket.
type testPipe struct {
	out chan<- wireRecord
	in  <-chan wireRecord

	// maxWritePayload forces writeCurrent to split a message across
	// several records when small, exercising readOne's reassembly.
	maxWritePayload int
}

func newTestPipePair() (client, server *testPipe) {
	clientToServer := make(chan wireRecord, 64)
	serverToClient := make(chan wireRecord, 64)
	return &testPipe{out: clientToServer, in: serverToClient, maxWritePayload: 16384},
		&testPipe{out: serverToClient, in: clientToServer, maxWritePayload: 16384}
}

func (p *testPipe) WriteRecord(ct protocol.ContentType, payload []byte) error {
	p.out <- wireRecord{ct, append([]byte(nil), payload...)}
	return nil
}

func (p *testPipe) ReadRecord() (protocol.ContentType, []byte, bool, error) {
	rec, ok := <-p.in
	if !ok {
		return 0, nil, false, errTestPipeClosed
	}
	return rec.contentType, rec.payload, false, nil
}

func (p *testPipe) Flush() error             { return nil }
func (p *testPipe) MaxWritePayloadSize() int  { return p.maxWritePayload }
func (p *testPipe) SSLv2HeaderBytes() [3]byte { return [3]byte{} }

var errTestPipeClosed = &Error{Kind: ErrBadMessage, Message: "test pipe closed"}

// testRandom wraps crypto/rand as a Random collaborator.
type testRandom struct{}

func (testRandom) Read(buf []byte) error {
	_, err := rand.Read(buf)
	return err
}

// testCredentials is the Credentials collaborator backed by a freshly
// generated, self-signed RSA certificate, matching the
// TLS_ECDHE_RSA_WITH_AES_*_GCM_SHA* suites this driver negotiates.
type testCredentials struct {
	certDER  []byte
	key      *rsa.PrivateKey
	ocspResp []byte
}

func newTestCredentials(t *testing.T) *testCredentials {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "handshakefsm-test"},
		NotBefore:    time.Unix(0, 0),
		NotAfter:     time.Unix(0, 0).Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("x509.CreateCertificate: %v", err)
	}
	return &testCredentials{certDER: der, key: key}
}

func (c *testCredentials) Certificates() [][]byte { return [][]byte{c.certDER} }
func (c *testCredentials) OCSPResponse() []byte    { return c.ocspResp }

func (c *testCredentials) SignServerKeyExchange(signedParams []byte) (uint16, []byte, error) {
	sum := sha256.Sum256(signedParams)
	sig, err := rsa.SignPKCS1v15(rand.Reader, c.key, crypto.SHA256, sum[:])
	if err != nil {
		return 0, nil, err
	}
	return signatureSchemeRSAPKCS1SHA256, sig, nil
}

// runPair drives client and server Negotiate loops concurrently to
// completion (or until either returns a non-nil error), failing t unless
// both drivers end with no error at SlotAppData.
func runPair(t *testing.T, client, server *Driver) {
	t.Helper()
	var wg sync.WaitGroup
	var clientErr, serverErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, clientErr = Negotiate(client)
	}()
	go func() {
		defer wg.Done()
		_, serverErr = Negotiate(server)
	}()
	wg.Wait()

	if clientErr != nil {
		t.Fatalf("client Negotiate: %v", clientErr)
	}
	if serverErr != nil {
		t.Fatalf("server Negotiate: %v", serverErr)
	}

	clientSlot, err := client.ActiveSlot()
	if err != nil || clientSlot != SlotAppData {
		t.Fatalf("client finished at slot %v (err %v), want SlotAppData", clientSlot, err)
	}
	serverSlot, err := server.ActiveSlot()
	if err != nil || serverSlot != SlotAppData {
		t.Fatalf("server finished at slot %v (err %v), want SlotAppData", serverSlot, err)
	}
}

func TestFullHandshakePFS(t *testing.T) {
	clientPipe, serverPipe := newTestPipePair()
	creds := newTestCredentials(t)

	client := NewDriver(false, clientPipe, nil, nil, testRandom{}, nil)
	server := NewDriver(true, serverPipe, nil, nil, testRandom{}, nil)
	server.Creds = creds

	runPair(t, client, server)

	if !bytes.Equal(client.Exchange.MasterSecret, server.Exchange.MasterSecret) {
		t.Fatalf("client and server master secrets diverge")
	}
	if client.Exchange.CipherSuite == nil || client.Exchange.CipherSuite.ID != server.Exchange.CipherSuite.ID {
		t.Fatalf("client and server negotiated different cipher suites")
	}
	if !client.Exchange.CipherSuite.IsForwardSecret() {
		t.Fatalf("negotiated suite is not forward-secret, want PFS for a full handshake")
	}
	if len(client.Exchange.PeerCertificates) == 0 {
		t.Fatalf("client did not record the server's certificate chain")
	}
	if client.Exchange.Keys == nil || server.Exchange.Keys == nil {
		t.Fatalf("encryption material was not derived on both sides")
	}
}

func TestFullHandshakeWithOCSPStapling(t *testing.T) {
	clientPipe, serverPipe := newTestPipePair()
	creds := newTestCredentials(t)
	creds.ocspResp = []byte("fake-ocsp-response-bytes")

	client := NewDriver(false, clientPipe, nil, nil, testRandom{}, nil)
	server := NewDriver(true, serverPipe, nil, nil, testRandom{}, nil)
	server.Creds = creds

	runPair(t, client, server)

	if !bytes.Equal(client.Exchange.OCSPResponse, creds.ocspResp) {
		t.Fatalf("client did not receive the stapled OCSP response")
	}
}

func TestResumption(t *testing.T) {
	serverCache := session.NewMemoryCache(16)
	clientCache := session.NewMemoryCache(16) // present only so the resolver's cache gate is open; never populated from Resume

	creds := newTestCredentials(t)

	// First connection: full handshake, populates the server's cache.
	clientPipe1, serverPipe1 := newTestPipePair()
	client1 := NewDriver(false, clientPipe1, nil, clientCache, testRandom{}, nil)
	server1 := NewDriver(true, serverPipe1, nil, serverCache, testRandom{}, nil)
	server1.Creds = creds
	runPair(t, client1, server1)

	if client1.Exchange.IsResumption {
		t.Fatalf("first connection should not have been a resumption")
	}
	if len(client1.SessionID) == 0 {
		t.Fatalf("first connection did not receive a session id")
	}

	// Second connection: the client offers the first connection's session
	// id and already holds its master secret (what a caller layer would
	// keep from the first connection, since handlers.go never asks the
	// client's own Cache for it).
	clientPipe2, serverPipe2 := newTestPipePair()
	client2 := NewDriver(false, clientPipe2, nil, clientCache, testRandom{}, nil)
	client2.Exchange.ResumedSessionID = append([]byte{}, client1.SessionID...)
	client2.Exchange.MasterSecret = append([]byte{}, client1.Exchange.MasterSecret...)

	server2 := NewDriver(true, serverPipe2, nil, serverCache, testRandom{}, nil)
	server2.Creds = creds

	runPair(t, client2, server2)

	if !client2.Exchange.IsResumption || !server2.Exchange.IsResumption {
		t.Fatalf("second connection did not resume (client=%v server=%v)",
			client2.Exchange.IsResumption, server2.Exchange.IsResumption)
	}
	if !bytes.Equal(client2.Exchange.MasterSecret, server2.Exchange.MasterSecret) {
		t.Fatalf("resumed connection's master secrets diverge")
	}
}

// TestFragmentedServerHello forces every server-written message onto
// 3-byte records, exercising readOne's reassembly across many
// back-to-back record boundaries rather than one record per message.
func TestFragmentedServerHello(t *testing.T) {
	clientPipe, serverPipe := newTestPipePair()
	serverPipe.maxWritePayload = 3
	creds := newTestCredentials(t)

	client := NewDriver(false, clientPipe, nil, nil, testRandom{}, nil)
	server := NewDriver(true, serverPipe, nil, nil, testRandom{}, nil)
	server.Creds = creds

	runPair(t, client, server)

	if client.Exchange.Keys == nil {
		t.Fatalf("fragmented handshake did not complete key derivation")
	}
}

func TestPickServerCipherSuiteSkipsNonPFS(t *testing.T) {
	offered := []uint16{
		ciphersuite.TLS_RSA_WITH_AES_128_GCM_SHA256,
		ciphersuite.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	}
	suite, err := pickServerCipherSuite(offered)
	if err != nil {
		t.Fatalf("pickServerCipherSuite: %v", err)
	}
	if suite.ID != ciphersuite.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256 {
		t.Fatalf("picked suite %#x, want the forward-secret suite even though RSA was preferred in the offer order", suite.ID)
	}
}

func TestPickServerCipherSuiteNoShared(t *testing.T) {
	_, err := pickServerCipherSuite([]uint16{0xffff})
	if err != errNoSharedCipherSuite {
		t.Fatalf("got err %v, want errNoSharedCipherSuite", err)
	}
}
