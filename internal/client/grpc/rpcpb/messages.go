// Package rpcpb holds the wire message shapes for the node's gRPC API, as
// plain JSON-tagged structs rather than protoc-generated code (see
// internal/client/grpc's package doc for why). Field names and the overall
// request/response split mirror Kaspa's own kaspad RPC surface, the closest
// available reference for a Pyrin-family node.
package rpcpb

// Envelope is carried over the single bidirectional MessageStream; exactly
// one field is set per message, mirroring a protobuf oneof without needing
// one.
type Envelope struct {
	GetInfoRequest                 *GetInfoRequest                 `json:"getInfoRequest,omitempty"`
	GetInfoResponse                *GetInfoResponse                `json:"getInfoResponse,omitempty"`
	GetBlockTemplateRequest        *GetBlockTemplateRequest        `json:"getBlockTemplateRequest,omitempty"`
	GetBlockTemplateResponse       *GetBlockTemplateResponse       `json:"getBlockTemplateResponse,omitempty"`
	SubmitBlockRequest             *SubmitBlockRequest             `json:"submitBlockRequest,omitempty"`
	SubmitBlockResponse            *SubmitBlockResponse            `json:"submitBlockResponse,omitempty"`
	NotifyBlockAddedRequest        *NotifyBlockAddedRequest        `json:"notifyBlockAddedRequest,omitempty"`
	NotifyBlockAddedResponse       *NotifyBlockAddedResponse       `json:"notifyBlockAddedResponse,omitempty"`
	BlockAddedNotification         *BlockAddedNotification         `json:"blockAddedNotification,omitempty"`
	NotifyNewBlockTemplateRequest  *NotifyNewBlockTemplateRequest  `json:"notifyNewBlockTemplateRequest,omitempty"`
	NotifyNewBlockTemplateResponse *NotifyNewBlockTemplateResponse `json:"notifyNewBlockTemplateResponse,omitempty"`
	NewBlockTemplateNotification   *NewBlockTemplateNotification   `json:"newBlockTemplateNotification,omitempty"`
}

type GetInfoRequest struct{}

type GetInfoResponse struct {
	ServerVersion string `json:"serverVersion"`
	IsSynced      bool   `json:"isSynced"`
	IsUtxoIndexed bool   `json:"isUtxoIndexed"`
}

type GetBlockTemplateRequest struct {
	PayAddress string `json:"payAddress"`
	ExtraData  string `json:"extraData,omitempty"`
}

// BlockTemplate is the node-supplied near-final block: header fields with
// everything fixed but nonce/timestamp, matching spec.md's "Block template"
// glossary entry.
type BlockTemplate struct {
	Version uint16 `json:"version"`
	// ParentLevels holds one hex-encoded hash list per DAG reference level,
	// mirroring pow.BlockHeader.Parents.
	ParentLevels         [][]string `json:"parentLevels"`
	HashMerkleRoot       string     `json:"hashMerkleRoot"`
	AcceptedIDMerkleRoot string     `json:"acceptedIdMerkleRoot"`
	UTXOCommitment       string     `json:"utxoCommitment"`
	Timestamp            int64      `json:"timestamp"`
	Bits                 uint32     `json:"bits"`
	Nonce                uint64     `json:"nonce"`
	DAAScore             uint64     `json:"daaScore"`
	BlueScore            uint64     `json:"blueScore"`
	BlueWork             string     `json:"blueWork"` // hex-encoded big-endian
	PruningPoint         string     `json:"pruningPoint"`
	IsSynced             bool       `json:"isSynced"`
}

type GetBlockTemplateResponse struct {
	Template *BlockTemplate `json:"template"`
	IsSynced bool           `json:"isSynced"`
}

type SubmitBlockRequest struct {
	Template *BlockTemplate `json:"template"`
}

const (
	SubmitBlockSuccess        = "success"
	SubmitBlockRejectInvalid  = "reject-invalid"
	SubmitBlockRejectStale    = "reject-stale" // spec.md's "red block"
	SubmitBlockRejectProofOfWork = "reject-proof-of-work"
)

type SubmitBlockResponse struct {
	RejectReason string `json:"rejectReason,omitempty"`
}

type NotifyBlockAddedRequest struct{}
type NotifyBlockAddedResponse struct{}

type BlockAddedNotification struct {
	Block *BlockTemplate `json:"block"`
}

type NotifyNewBlockTemplateRequest struct{}
type NotifyNewBlockTemplateResponse struct{}

type NewBlockTemplateNotification struct{}
