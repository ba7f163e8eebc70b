// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package handshakefsm

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"

	"github.com/coretls/tlshandshake/pkg/crypto/ciphersuite"
	"github.com/coretls/tlshandshake/pkg/crypto/elliptic"
	"github.com/coretls/tlshandshake/pkg/crypto/prf"
	"github.com/coretls/tlshandshake/pkg/protocol"
	"github.com/coretls/tlshandshake/pkg/protocol/extension"
	"github.com/coretls/tlshandshake/pkg/protocol/handshake"
)

// SignatureScheme values this driver's ServerKeyExchange handlers sign and
// verify with. TLS 1.2's full SignatureScheme registry is much larger;
// this driver only ever produces and accepts these two, matching the one
// ECDHE curve (a value of elliptic.X25519, chosen by serverWriteServerKeyExchange)
// and the two certificate key types Credentials is expected to hold.
const (
	signatureSchemeRSAPKCS1SHA256       uint16 = 0x0401
	signatureSchemeECDSASECP256R1SHA256 uint16 = 0x0403
)

const curveTypeNamedCurve = 3

func init() {
	actionTable[SlotClientHello].ClientRole = clientWriteClientHello
	actionTable[SlotClientHello].ServerRole = serverReadClientHello

	actionTable[SlotServerHello].ServerRole = serverWriteServerHello
	actionTable[SlotServerHello].ClientRole = clientReadServerHello

	actionTable[SlotServerCert].ServerRole = serverWriteCertificate
	actionTable[SlotServerCert].ClientRole = clientReadCertificate

	actionTable[SlotServerCertStatus].ServerRole = serverWriteCertificateStatus
	actionTable[SlotServerCertStatus].ClientRole = clientReadCertificateStatus

	actionTable[SlotServerKey].ServerRole = serverWriteServerKeyExchange
	actionTable[SlotServerKey].ClientRole = clientReadServerKeyExchange

	actionTable[SlotServerHelloDone].ServerRole = serverWriteServerHelloDone
	actionTable[SlotServerHelloDone].ClientRole = clientReadServerHelloDone

	actionTable[SlotClientKey].ClientRole = clientWriteClientKeyExchange
	actionTable[SlotClientKey].ServerRole = serverReadClientKeyExchange

	actionTable[SlotClientCCS].ClientRole = writeChangeCipherSpec
	actionTable[SlotClientCCS].ServerRole = readChangeCipherSpec

	actionTable[SlotServerCCS].ServerRole = writeChangeCipherSpec
	actionTable[SlotServerCCS].ClientRole = readChangeCipherSpec

	actionTable[SlotClientFinished].ClientRole = clientWriteFinished
	actionTable[SlotClientFinished].ServerRole = serverReadClientFinished

	actionTable[SlotServerFinished].ServerRole = serverWriteFinished
	actionTable[SlotServerFinished].ClientRole = clientReadServerFinished
}

// clientWriteClientHello builds the outgoing ClientHello (spec.md §3's
// first slot, every shape). A non-empty Exchange.ResumedSessionID offers
// resumption of that session; the server decides whether to honor it.
func clientWriteClientHello(d *Driver) error {
	var random handshake.Random
	if err := random.Populate(); err != nil {
		return err
	}
	d.Exchange.ClientRandom = random
	d.Exchange.OfferedCipherSuites = ciphersuite.SupportedIDs()

	msg := &handshake.MessageClientHello{
		Version:            protocol.Version12,
		Random:             random,
		SessionID:          d.Exchange.ResumedSessionID,
		CipherSuiteIDs:     d.Exchange.OfferedCipherSuites,
		CompressionMethods: []*protocol.CompressionMethod{{ID: protocol.CompressionMethodIDNull}},
		Extensions:         clientHelloExtensions(d),
	}
	body, err := msg.Marshal()
	if err != nil {
		return err
	}
	d.AppendPayload(body)
	return nil
}

func clientHelloExtensions(d *Driver) []extension.Extension {
	exts := []extension.Extension{&extension.RenegotiationInfo{}}
	if d.Exchange.ServerName != "" {
		exts = append(exts, &extension.ServerName{HostName: d.Exchange.ServerName})
	}
	return exts
}

// serverReadClientHello parses the inbound ClientHello, resolves SNI,
// and either finds a resumable session in the cache or picks a cipher
// suite from the client's offer.
func serverReadClientHello(d *Driver) error {
	var msg handshake.MessageClientHello
	if err := msg.Unmarshal(d.Payload()[handshake.HeaderLength:]); err != nil {
		return err
	}

	d.Exchange.ClientRandom = msg.Random
	d.Exchange.OfferedCipherSuites = msg.CipherSuiteIDs
	if name, ok := msg.ServerName(); ok {
		d.Exchange.ServerName = name
	}

	if d.Cache != nil && len(msg.SessionID) > 0 {
		if masterSecret, suiteID, found := d.Cache.Resume(msg.SessionID); found {
			if suite, err := ciphersuite.ByID(suiteID); err == nil {
				d.Exchange.CipherSuite = suite
				d.Exchange.MasterSecret = masterSecret
				d.Exchange.IsResumption = true
				d.SessionID = append([]byte{}, msg.SessionID...)
				return nil
			}
		}
	}

	suite, err := pickServerCipherSuite(msg.CipherSuiteIDs)
	if err != nil {
		return err
	}
	d.Exchange.CipherSuite = suite
	return nil
}

// pickServerCipherSuite returns the most preferred suite this driver
// supports that the client also offered. TLS_RSA_WITH_AES_128_GCM_SHA256
// stays registered in ciphersuite.ByID for lookups and logging, but is
// never selected here: MessageClientKeyExchange implements only the
// ECDHE public-key wire form, not an RSA-encrypted premaster secret.
func pickServerCipherSuite(offered []uint16) (*ciphersuite.Suite, error) {
	offeredSet := make(map[uint16]bool, len(offered))
	for _, id := range offered {
		offeredSet[id] = true
	}
	for _, id := range ciphersuite.SupportedIDs() {
		if id == ciphersuite.TLS_RSA_WITH_AES_128_GCM_SHA256 {
			continue
		}
		if offeredSet[id] {
			return ciphersuite.ByID(id)
		}
	}
	return nil, errNoSharedCipherSuite
}

// serverWriteServerHello answers a ClientHello, invoking the
// handshake-type resolver once the cipher suite and resumption outcome
// are both known (spec.md §4.4).
func serverWriteServerHello(d *Driver) error {
	var random handshake.Random
	if err := random.Populate(); err != nil {
		return err
	}
	d.Exchange.ServerRandom = random

	if d.Creds != nil {
		d.Exchange.OCSPResponse = d.Creds.OCSPResponse()
	}

	if err := d.SetHandshakeType(); err != nil {
		return err
	}

	suiteID := d.Exchange.CipherSuite.ID
	msg := &handshake.MessageServerHello{
		Version:           protocol.Version12,
		Random:            random,
		SessionID:         d.SessionID,
		CipherSuiteID:     &suiteID,
		CompressionMethod: &protocol.CompressionMethod{ID: protocol.CompressionMethodIDNull},
		Extensions:        []extension.Extension{&extension.RenegotiationInfo{}},
	}
	body, err := msg.Marshal()
	if err != nil {
		return err
	}
	d.Exchange.ServerHelloLog = msg.MakeLog()
	d.AppendPayload(body)
	return nil
}

// clientReadServerHello parses the server's choice and likewise invokes
// the resolver once resumption is known.
func clientReadServerHello(d *Driver) error {
	var msg handshake.MessageServerHello
	if err := msg.Unmarshal(d.Payload()[handshake.HeaderLength:]); err != nil {
		return err
	}
	d.Exchange.ServerHelloLog = msg.MakeLog()
	d.Exchange.ServerRandom = msg.Random

	if msg.CipherSuiteID == nil {
		return errMissingCipherSuite
	}
	suite, err := ciphersuite.ByID(*msg.CipherSuiteID)
	if err != nil {
		return err
	}
	d.Exchange.CipherSuite = suite

	if len(d.Exchange.ResumedSessionID) > 0 && bytes.Equal(d.Exchange.ResumedSessionID, msg.SessionID) {
		d.Exchange.IsResumption = true
	}
	d.SessionID = append([]byte{}, msg.SessionID...)

	return d.SetHandshakeType()
}

// serverWriteCertificate sends this side's certificate chain (FULL_HANDSHAKE
// shapes only).
func serverWriteCertificate(d *Driver) error {
	var chain [][]byte
	if d.Creds != nil {
		chain = d.Creds.Certificates()
	}
	if len(chain) == 0 {
		return errNoCertificateConfigured
	}
	d.Exchange.Certificates = chain

	msg := &handshake.MessageCertificate{Certificates: chain}
	body, err := msg.Marshal()
	if err != nil {
		return err
	}
	d.AppendPayload(body)
	return nil
}

// clientReadCertificate parses the server's chain; this driver leaves
// chain validation (hostname match, trust anchor, expiry) to the caller,
// who has Exchange.PeerCertificates available once the handshake
// completes.
func clientReadCertificate(d *Driver) error {
	var msg handshake.MessageCertificate
	if err := msg.Unmarshal(d.Payload()[handshake.HeaderLength:]); err != nil {
		return err
	}
	if len(msg.Certificates) == 0 {
		return errEmptyCertificateChain
	}
	d.Exchange.Certificates = msg.Certificates

	peers := make([]*x509.Certificate, 0, len(msg.Certificates))
	for _, der := range msg.Certificates {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return err
		}
		peers = append(peers, cert)
	}
	d.Exchange.PeerCertificates = peers
	return nil
}

// serverWriteCertificateStatus staples the OCSP response SERVER_HELLO
// already decided to send (OCSP_STATUS shapes only).
func serverWriteCertificateStatus(d *Driver) error {
	msg := &handshake.MessageCertificateStatus{Response: d.Exchange.OCSPResponse}
	body, err := msg.Marshal()
	if err != nil {
		return err
	}
	d.AppendPayload(body)
	return nil
}

func clientReadCertificateStatus(d *Driver) error {
	var msg handshake.MessageCertificateStatus
	if err := msg.Unmarshal(d.Payload()[handshake.HeaderLength:]); err != nil {
		return err
	}
	d.Exchange.OCSPResponse = msg.Response
	return nil
}

// serverWriteServerKeyExchange generates this connection's ephemeral
// ECDHE key pair and signs it with the certificate's private key
// (PERFECT_FORWARD_SECRECY shapes only — the only shapes this driver ever
// actually negotiates for a full handshake, see pickServerCipherSuite).
func serverWriteServerKeyExchange(d *Driver) error {
	curve := elliptic.X25519
	priv, pub, err := curve.GenerateKeyPair()
	if err != nil {
		return err
	}
	d.Exchange.Curve = curve
	d.Exchange.LocalECDHEPriv = priv
	d.Exchange.LocalECDHEPub = pub

	if d.Creds == nil {
		return errNoCertificateConfigured
	}
	signedParams := serverKeyExchangeSignedParams(d.Exchange.ClientRandom, d.Exchange.ServerRandom, uint16(curve), pub)
	scheme, sig, err := d.Creds.SignServerKeyExchange(signedParams)
	if err != nil {
		return err
	}

	msg := &handshake.MessageServerKeyExchange{
		NamedGroup:      uint16(curve),
		PublicKey:       pub,
		SignatureScheme: scheme,
		Signature:       sig,
	}
	body, err := msg.Marshal()
	if err != nil {
		return err
	}
	d.AppendPayload(body)
	return nil
}

// clientReadServerKeyExchange learns the server's curve and public share
// and checks its signature against the leaf certificate read in SERVER_CERT.
func clientReadServerKeyExchange(d *Driver) error {
	var msg handshake.MessageServerKeyExchange
	if err := msg.Unmarshal(d.Payload()[handshake.HeaderLength:]); err != nil {
		return err
	}
	if len(d.Exchange.PeerCertificates) == 0 {
		return errNoPeerCertificate
	}

	d.Exchange.Curve = elliptic.Curve(msg.NamedGroup)
	d.Exchange.RemoteECDHEPub = msg.PublicKey

	signedParams := serverKeyExchangeSignedParams(d.Exchange.ClientRandom, d.Exchange.ServerRandom, msg.NamedGroup, msg.PublicKey)
	return verifyServerKeyExchangeSignature(d.Exchange.PeerCertificates[0], msg.SignatureScheme, signedParams, msg.Signature)
}

// serverKeyExchangeSignedParams builds the bytes RFC 4492 §5.4 defines as
// ServerKeyExchange's signed input: client_random || server_random ||
// ServerECDHParams.
func serverKeyExchangeSignedParams(clientRandom, serverRandom handshake.Random, namedGroup uint16, pub []byte) []byte {
	cr := clientRandom.MarshalFixed()
	sr := serverRandom.MarshalFixed()

	out := make([]byte, 0, len(cr)+len(sr)+1+2+1+len(pub))
	out = append(out, cr[:]...)
	out = append(out, sr[:]...)
	out = append(out, curveTypeNamedCurve)
	out = append(out, byte(namedGroup>>8), byte(namedGroup))
	out = append(out, byte(len(pub)))
	out = append(out, pub...)
	return out
}

func verifyServerKeyExchangeSignature(cert *x509.Certificate, scheme uint16, signedParams, signature []byte) error {
	switch scheme {
	case signatureSchemeRSAPKCS1SHA256:
		pub, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			return errWrongCertificateKeyType
		}
		sum := sha256.Sum256(signedParams)
		return rsa.VerifyPKCS1v15(pub, crypto.SHA256, sum[:], signature)
	case signatureSchemeECDSASECP256R1SHA256:
		pub, ok := cert.PublicKey.(*ecdsa.PublicKey)
		if !ok {
			return errWrongCertificateKeyType
		}
		sum := sha256.Sum256(signedParams)
		if !ecdsa.VerifyASN1(pub, sum[:], signature) {
			return errServerKeyExchangeBadSig
		}
		return nil
	default:
		return errUnsupportedSigScheme
	}
}

// serverWriteServerHelloDone has no body; its presence alone tells the
// client the server half of the full handshake is complete.
func serverWriteServerHelloDone(d *Driver) error {
	msg := handshake.MessageServerHelloDone{}
	body, err := msg.Marshal()
	if err != nil {
		return err
	}
	d.AppendPayload(body)
	return nil
}

func clientReadServerHelloDone(d *Driver) error {
	var msg handshake.MessageServerHelloDone
	return msg.Unmarshal(d.Payload()[handshake.HeaderLength:])
}

// clientWriteClientKeyExchange generates the client's own ECDHE key pair
// on the curve the server chose, completes the ECDH, and derives the
// master secret and key block before sending its public share.
func clientWriteClientKeyExchange(d *Driver) error {
	priv, pub, err := d.Exchange.Curve.GenerateKeyPair()
	if err != nil {
		return err
	}
	d.Exchange.LocalECDHEPriv = priv
	d.Exchange.LocalECDHEPub = pub

	preMasterSecret, err := prf.PreMasterSecret(d.Exchange.RemoteECDHEPub, priv, d.Exchange.Curve)
	if err != nil {
		return err
	}
	if err := d.deriveMasterSecretAndKeys(preMasterSecret); err != nil {
		return err
	}

	msg := &handshake.MessageClientKeyExchange{PublicKey: pub}
	body, err := msg.Marshal()
	if err != nil {
		return err
	}
	d.AppendPayload(body)
	return nil
}

// serverReadClientKeyExchange completes the ECDH using the key pair
// generated in serverWriteServerKeyExchange and derives the same secrets.
func serverReadClientKeyExchange(d *Driver) error {
	var msg handshake.MessageClientKeyExchange
	if err := msg.Unmarshal(d.Payload()[handshake.HeaderLength:]); err != nil {
		return err
	}
	d.Exchange.RemoteECDHEPub = msg.PublicKey

	preMasterSecret, err := prf.PreMasterSecret(msg.PublicKey, d.Exchange.LocalECDHEPriv, d.Exchange.Curve)
	if err != nil {
		return err
	}
	return d.deriveMasterSecretAndKeys(preMasterSecret)
}

// deriveMasterSecretAndKeys implements RFC 5246 §8.1's master_secret
// derivation and §6.3's key_block expansion, installs the resulting AEAD
// states on Exchange.Keys, and stores the session for resumption when a
// cache is configured.
func (d *Driver) deriveMasterSecretAndKeys(preMasterSecret []byte) error {
	suite := d.Exchange.CipherSuite
	clientRandom := d.Exchange.ClientRandom.MarshalFixed()
	serverRandom := d.Exchange.ServerRandom.MarshalFixed()

	masterSecret, err := prf.MasterSecret(preMasterSecret, clientRandom[:], serverRandom[:], suite.PRFHash)
	if err != nil {
		return err
	}
	d.Exchange.MasterSecret = masterSecret

	keys, err := prf.GenerateEncryptionKeys(masterSecret, clientRandom[:], serverRandom[:], 0, suite.KeyLength, suite.FixedIVLength, suite.PRFHash)
	if err != nil {
		return err
	}

	clientAEAD, err := suite.NewAEAD(keys.ClientWriteKey, keys.ClientWriteIV, keys.ServerWriteKey, keys.ServerWriteIV)
	if err != nil {
		return err
	}
	serverAEAD, err := suite.NewAEAD(keys.ServerWriteKey, keys.ServerWriteIV, keys.ClientWriteKey, keys.ClientWriteIV)
	if err != nil {
		return err
	}
	d.Exchange.Keys = &EncryptionMaterial{ClientWriteAEAD: clientAEAD, ServerWriteAEAD: serverAEAD}

	if d.Cache != nil && len(d.SessionID) > 0 {
		d.Cache.Store(d.SessionID, masterSecret, suite.ID)
	}
	return nil
}

// writeChangeCipherSpec and readChangeCipherSpec are shared by both
// CLIENT_CCS and SERVER_CCS: ChangeCipherSpec's one-byte body carries no
// information beyond its own presence (RFC 5246 §7.1). Switching the
// record layer over to Exchange.Keys is the caller's responsibility, not
// this driver's — see Exchange's doc comment.
func writeChangeCipherSpec(d *Driver) error {
	d.AppendPayload([]byte{1})
	return nil
}

func readChangeCipherSpec(d *Driver) error {
	if len(d.Payload()) != 1 || d.Payload()[0] != 1 {
		return errMalformedChangeCipherSpec
	}
	return nil
}

// clientWriteFinished and serverWriteFinished compute verify_data over the
// transcript as it stood immediately before this very message (RFC 5246
// §7.4.9's "up to but not including"), available as d.PreMessageTranscript.
func clientWriteFinished(d *Driver) error {
	verifyData, err := prf.VerifyDataClientFromDigest(d.Exchange.MasterSecret, d.transcriptDigest(), d.Exchange.CipherSuite.PRFHash)
	if err != nil {
		return err
	}
	msg, err := appendFinished(d, verifyData)
	if err != nil {
		return err
	}
	d.Exchange.ClientFinishedLog = msg.MakeLog()
	return nil
}

func serverWriteFinished(d *Driver) error {
	verifyData, err := prf.VerifyDataServerFromDigest(d.Exchange.MasterSecret, d.transcriptDigest(), d.Exchange.CipherSuite.PRFHash)
	if err != nil {
		return err
	}
	msg, err := appendFinished(d, verifyData)
	if err != nil {
		return err
	}
	d.Exchange.ServerFinishedLog = msg.MakeLog()
	return nil
}

func appendFinished(d *Driver, verifyData []byte) (*handshake.MessageFinished, error) {
	msg := &handshake.MessageFinished{VerifyData: verifyData}
	body, err := msg.Marshal()
	if err != nil {
		return nil, err
	}
	d.AppendPayload(body)
	return msg, nil
}

func serverReadClientFinished(d *Driver) error {
	var msg handshake.MessageFinished
	if err := msg.Unmarshal(d.Payload()[handshake.HeaderLength:]); err != nil {
		return err
	}
	expected, err := prf.VerifyDataClientFromDigest(d.Exchange.MasterSecret, d.transcriptDigest(), d.Exchange.CipherSuite.PRFHash)
	if err != nil {
		return err
	}
	if !hmac.Equal(expected, msg.VerifyData) {
		return errFinishedMismatch
	}
	d.Exchange.ClientFinishedLog = msg.MakeLog()
	return nil
}

func clientReadServerFinished(d *Driver) error {
	var msg handshake.MessageFinished
	if err := msg.Unmarshal(d.Payload()[handshake.HeaderLength:]); err != nil {
		return err
	}
	expected, err := prf.VerifyDataServerFromDigest(d.Exchange.MasterSecret, d.transcriptDigest(), d.Exchange.CipherSuite.PRFHash)
	if err != nil {
		return err
	}
	if !hmac.Equal(expected, msg.VerifyData) {
		return errFinishedMismatch
	}
	d.Exchange.ServerFinishedLog = msg.MakeLog()
	return nil
}

// transcriptDigest returns the pre-Finished transcript digest in the
// width the negotiated suite's PRF hash names (SHA-256 unless the suite
// specifies SHA-384).
func (d *Driver) transcriptDigest() []byte {
	if d.Exchange.CipherSuite.PRFHash().Size() == sha512.Size384 {
		return d.PreMessageTranscript.Sum384()
	}
	return d.PreMessageTranscript.Sum256()
}
