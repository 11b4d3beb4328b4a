package pib

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/ndn"
	"github.com/named-data/go-pib/pkg/security/tpm"
)

func decodeKeyType(v uint64) tpm.KeyType {
	return tpm.KeyType(v)
}

// encodeCertificate/decodeCertificate are a minimal, self-contained
// certificate codec. spec.md §1 scopes the name/certificate wire-format
// codec as an external collaborator; this module still needs *some*
// concrete encoding to round-trip bytes through PibDb, so it uses the
// smallest encoding that carries the fields BuildCertificate fills in,
// length-prefixed rather than a full NDN Data TLV. Any real deployment
// substitutes its own Spec/Codec for this.
func encodeCertificate(cert *Certificate, signer ndn.Signer) ([]byte, error) {
	var buf bytes.Buffer
	writeBytes(&buf, cert.Name.Bytes())
	writeBytes(&buf, cert.KeyName.Bytes())
	writeUint64(&buf, uint64(cert.KeyType))
	writeBytes(&buf, cert.PublicKeyInfo)
	writeUint64(&buf, uint64(cert.NotBefore.UnixMicro()))
	writeUint64(&buf, uint64(cert.NotAfter.UnixMicro()))
	writeBytes(&buf, cert.SignerKeyLocator.Bytes())

	covered := enc.Wire{append([]byte(nil), buf.Bytes()...)}
	sigInfo, err := signer.SigInfo()
	if err != nil {
		return nil, fmt.Errorf("pib: signing certificate: %w", err)
	}
	sigValue, err := signer.ComputeSigValue(covered)
	if err != nil {
		return nil, fmt.Errorf("pib: signing certificate: %w", err)
	}

	writeUint64(&buf, uint64(sigInfo.Type))
	writeBytes(&buf, sigValue)

	return buf.Bytes(), nil
}

func decodeCertificate(data []byte) (*Certificate, ndn.SigType, []byte, []byte, error) {
	r := bytes.NewReader(data)

	nameBytes, err := readBytes(r)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	name, err := enc.NameFromBytes(nameBytes)
	if err != nil {
		return nil, 0, nil, nil, err
	}

	keyNameBytes, err := readBytes(r)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	keyName, err := enc.NameFromBytes(keyNameBytes)
	if err != nil {
		return nil, 0, nil, nil, err
	}

	keyType, err := readUint64(r)
	if err != nil {
		return nil, 0, nil, nil, err
	}

	pub, err := readBytes(r)
	if err != nil {
		return nil, 0, nil, nil, err
	}

	notBefore, err := readUint64(r)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	notAfter, err := readUint64(r)
	if err != nil {
		return nil, 0, nil, nil, err
	}

	signerBytes, err := readBytes(r)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	signerKeyLocator, err := enc.NameFromBytes(signerBytes)
	if err != nil {
		return nil, 0, nil, nil, err
	}

	coveredLen := len(data) - r.Len()
	covered := data[:coveredLen]

	sigType, err := readUint64(r)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	sigValue, err := readBytes(r)
	if err != nil {
		return nil, 0, nil, nil, err
	}

	cert := &Certificate{
		Name:             name,
		KeyName:          keyName,
		PublicKeyInfo:    pub,
		NotBefore:        time.UnixMicro(int64(notBefore)),
		NotAfter:         time.UnixMicro(int64(notAfter)),
		SignerKeyLocator: signerKeyLocator,
		Data:             data,
	}
	cert.KeyType = decodeKeyType(keyType)
	return cert, ndn.SigType(sigType), covered, sigValue, nil
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUint64(buf, uint64(len(b)))
	buf.Write(b)
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(tmp[:]), nil
}
