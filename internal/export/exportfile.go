// Copyright 2021 the DP3T WS authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package export assembles the downloadable key archives: the signed
// proto zips of the V1 and V2 surfaces and the Cuckoo filter zips of the
// V2-UMA surface.
package export

import (
	"archive/zip"
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/gaen"
	exportpb "github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/pb/export"

	"google.golang.org/protobuf/proto"
)

const (
	exportBinaryName    = "export.bin"
	exportSignatureName = "export.sig"

	defaultIntervalCount = 144
)

var (
	fixedHeader      = []byte("EK Export v1    ")
	fixedHeaderWidth = 16
)

// Assembler builds export archives signed with the gaen key.
type Assembler struct {
	config *Config
	signer crypto.Signer
}

// NewAssembler wires the signature metadata and the signing key.
func NewAssembler(config *Config, signer crypto.Signer) *Assembler {
	return &Assembler{config: config, signer: signer}
}

// MarshalExportFile builds the signed proto archive for the given keys and
// served window: export.bin (fixed header plus TemporaryExposureKeyExport)
// and export.sig (TEKSignatureList), zipped.
func (a *Assembler) MarshalExportFile(keys []*gaen.TemporaryExposureKey, windowStart, windowEnd time.Time) ([]byte, error) {
	contents, err := a.marshalContents(keys, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal exposure keys: %w", err)
	}

	sigContents, err := a.marshalSignature(contents)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal signature file: %w", err)
	}

	return zipArchive(contents, sigContents)
}

func zipArchive(binContents, sigContents []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	zf, err := zw.Create(exportBinaryName)
	if err != nil {
		return nil, fmt.Errorf("unable to create zip entry for export: %w", err)
	}
	if _, err := zf.Write(binContents); err != nil {
		return nil, fmt.Errorf("unable to write export to archive: %w", err)
	}
	zf, err = zw.Create(exportSignatureName)
	if err != nil {
		return nil, fmt.Errorf("unable to create zip entry for signature: %w", err)
	}
	if _, err := zf.Write(sigContents); err != nil {
		return nil, fmt.Errorf("unable to write signature to archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("unable to close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *Assembler) marshalContents(keys []*gaen.TemporaryExposureKey, windowStart, windowEnd time.Time) ([]byte, error) {
	if len(fixedHeader) != fixedHeaderWidth {
		return nil, fmt.Errorf("incorrect header length: %d", len(fixedHeader))
	}

	pbeks := make([]*exportpb.TemporaryExposureKey, 0, len(keys))
	for _, k := range keys {
		pbek, err := makeTEK(k)
		if err != nil {
			return nil, err
		}
		pbeks = append(pbeks, pbek)
	}

	pbeke := exportpb.TemporaryExposureKeyExport{
		StartTimestamp: proto.Uint64(uint64(windowStart.Unix())),
		EndTimestamp:   proto.Uint64(uint64(windowEnd.Unix())),
		Region:         proto.String(a.config.Region),
		// A single file is the unit of atomicity, always batch 1 of 1.
		BatchNum:       proto.Int32(1),
		BatchSize:      proto.Int32(1),
		Keys:           pbeks,
		SignatureInfos: []*exportpb.SignatureInfo{a.signatureInfo()},
	}
	protoBytes, err := proto.Marshal(&pbeke)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal exposure keys: %w", err)
	}

	// Appending to the shared header slice could scribble over it, build
	// the payload in a fresh buffer.
	exportBytes := make([]byte, 0, fixedHeaderWidth+len(protoBytes))
	exportBytes = append(exportBytes, fixedHeader...)
	return append(exportBytes, protoBytes...), nil
}

func makeTEK(k *gaen.TemporaryExposureKey) (*exportpb.TemporaryExposureKey, error) {
	raw, err := k.KeyBytes()
	if err != nil {
		return nil, fmt.Errorf("unable to decode key material: %w", err)
	}
	pbek := exportpb.TemporaryExposureKey{
		KeyData:               raw,
		TransmissionRiskLevel: proto.Int32(k.TransmissionRiskLevel),
	}
	if k.RollingStartNumber != 0 {
		pbek.RollingStartIntervalNumber = proto.Int32(k.RollingStartNumber)
	}
	if k.RollingPeriod != defaultIntervalCount {
		pbek.RollingPeriod = proto.Int32(k.RollingPeriod)
	}
	return &pbek, nil
}

func (a *Assembler) signatureInfo() *exportpb.SignatureInfo {
	sigInfo := &exportpb.SignatureInfo{SignatureAlgorithm: proto.String(a.config.Algorithm)}
	if a.config.BundleID != "" {
		sigInfo.AppBundleId = proto.String(a.config.BundleID)
	}
	if a.config.PackageName != "" {
		sigInfo.AndroidPackage = proto.String(a.config.PackageName)
	}
	if a.config.KeyVersion != "" {
		sigInfo.VerificationKeyVersion = proto.String(a.config.KeyVersion)
	}
	if a.config.KeyIdentifier != "" {
		sigInfo.VerificationKeyId = proto.String(a.config.KeyIdentifier)
	}
	return sigInfo
}

func (a *Assembler) marshalSignature(exportContents []byte) ([]byte, error) {
	sig, err := a.generateSignature(exportContents)
	if err != nil {
		return nil, fmt.Errorf("unable to generate signature: %w", err)
	}
	teksl := exportpb.TEKSignatureList{
		Signatures: []*exportpb.TEKSignature{{
			SignatureInfo: a.signatureInfo(),
			BatchNum:      proto.Int32(1),
			BatchSize:     proto.Int32(1),
			Signature:     sig,
		}},
	}
	protoBytes, err := proto.Marshal(&teksl)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal signature file: %w", err)
	}
	return protoBytes, nil
}

// generateSignature signs sha256(data) with the gaen key, ASN.1 DER.
func (a *Assembler) generateSignature(data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	sig, err := a.signer.Sign(rand.Reader, digest[:], crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("unable to sign: %w", err)
	}
	return sig, nil
}

// UnmarshalExportFile extracts the TemporaryExposureKeyExport from a zipped
// archive along with the SHA256 digest of the signed content.
func UnmarshalExportFile(zippedPayload []byte) (*exportpb.TemporaryExposureKeyExport, []byte, error) {
	content, err := archiveEntry(zippedPayload, exportBinaryName)
	if err != nil {
		return nil, nil, err
	}

	digest := sha256.Sum256(content)

	if len(content) < fixedHeaderWidth {
		return nil, nil, fmt.Errorf("payload too short: %d bytes", len(content))
	}
	prefix := content[:fixedHeaderWidth]
	if !bytes.Equal(prefix, fixedHeader) {
		return nil, nil, fmt.Errorf("unknown prefix: %v", string(prefix))
	}

	message := new(exportpb.TemporaryExposureKeyExport)
	if err := proto.Unmarshal(content[fixedHeaderWidth:], message); err != nil {
		return nil, nil, err
	}
	return message, digest[:], nil
}

// UnmarshalSignatureFile extracts the TEKSignatureList from a zipped archive.
func UnmarshalSignatureFile(zippedPayload []byte) (*exportpb.TEKSignatureList, error) {
	content, err := archiveEntry(zippedPayload, exportSignatureName)
	if err != nil {
		return nil, err
	}

	message := new(exportpb.TEKSignatureList)
	if err := proto.Unmarshal(content, message); err != nil {
		return nil, err
	}
	return message, nil
}

func archiveEntry(zippedPayload []byte, name string) ([]byte, error) {
	zp, err := zip.NewReader(bytes.NewReader(zippedPayload), int64(len(zippedPayload)))
	if err != nil {
		return nil, fmt.Errorf("can't read payload: %w", err)
	}
	for _, file := range zp.File {
		if file.Name != name {
			continue
		}
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return nil, fmt.Errorf("payload is invalid: no %v file was found", name)
}
