package ccnb

// DTag is a numeric dictionary tag identifying a schema element on the
// wire. The dictionary is a compile-time, process-global, immutable table:
// there is no mutable dictionary state anywhere in this package.
type DTag uint64

// The real CCNx dictionary carries on the order of 200 entries; this table
// lists the ones the schema, client, fetch, signing, and sync packages in
// this module actually reference. Unreferenced historical entries (e.g.
// the many ccnd-internal or FaceInstance/PolicyLink elements) are left out
// rather than copied in as dead weight, the same way gocanopen's
// od/constants.go lists only the CiA object indices its own stack touches
// rather than the full CiA-301 range.
const (
	DTagAny                    DTag = 13
	DTagName                   DTag = 14
	DTagComponent              DTag = 15
	DTagCertificate            DTag = 16
	DTagContent                DTag = 19
	DTagSignedInfo             DTag = 20
	DTagContentObject          DTag = 21
	DTagSignature              DTag = 22
	DTagDigestAlgorithm        DTag = 24
	DTagBlockSize              DTag = 25
	DTagFreshnessSeconds       DTag = 26
	DTagFinalBlockID           DTag = 27
	DTagPublisherPublicKeyDigest DTag = 28
	DTagKeyLocator             DTag = 29
	DTagKeyName                DTag = 30
	DTagKey                    DTag = 31
	DTagSignatureBits          DTag = 32
	DTagTimestamp              DTag = 33
	DTagType                   DTag = 34
	DTagNonce                  DTag = 35
	DTagScope                  DTag = 36
	DTagExclude                DTag = 37
	DTagBloom                  DTag = 38
	DTagBloomSeed              DTag = 39
	DTagAnswerOriginKind       DTag = 40
	DTagInterestLifetime       DTag = 41
	DTagInterest               DTag = 42
	DTagMinSuffixComponents    DTag = 43
	DTagMaxSuffixComponents    DTag = 44
	DTagChildSelector          DTag = 45
	DTagWitness                DTag = 46
	DTagExtOpt                 DTag = 47
	DTagLink                   DTag = 48
	DTagLinkAuthenticator      DTag = 49
	DTagNACK                   DTag = 50
	DTagStatusResponse         DTag = 51
	DTagStatusCode             DTag = 52
	DTagStatusText             DTag = 53
	DTagSequenceNumber         DTag = 54
	DTagCollection             DTag = 55
	DTagCollectionEntry        DTag = 56
	DTagRootDigest             DTag = 60
	DTagSyncNode               DTag = 61
	DTagSyncNodeElements       DTag = 62
	DTagSyncNodeElementLeaf    DTag = 63
	DTagSyncNodeElementProxy   DTag = 64
	DTagSyncNodeElementExtension DTag = 65
	DTagSyncNodeKind           DTag = 66
	DTagSyncConfigSlice        DTag = 67
	DTagSyncVersion            DTag = 68
	DTagTopologyPrefix         DTag = 69
	DTagNamePrefix             DTag = 70
	DTagSliceClause            DTag = 71
	DTagSyncContentHash        DTag = 72
)

var dtagNames = map[DTag]string{
	DTagAny:                      "Any",
	DTagName:                     "Name",
	DTagComponent:                "Component",
	DTagCertificate:              "Certificate",
	DTagContent:                  "Content",
	DTagSignedInfo:               "SignedInfo",
	DTagContentObject:            "ContentObject",
	DTagSignature:                "Signature",
	DTagDigestAlgorithm:          "DigestAlgorithm",
	DTagBlockSize:                "BlockSize",
	DTagFreshnessSeconds:         "FreshnessSeconds",
	DTagFinalBlockID:             "FinalBlockID",
	DTagPublisherPublicKeyDigest: "PublisherPublicKeyDigest",
	DTagKeyLocator:               "KeyLocator",
	DTagKeyName:                  "KeyName",
	DTagKey:                      "Key",
	DTagSignatureBits:            "SignatureBits",
	DTagTimestamp:                "Timestamp",
	DTagType:                     "Type",
	DTagNonce:                    "Nonce",
	DTagScope:                    "Scope",
	DTagExclude:                  "Exclude",
	DTagBloom:                    "Bloom",
	DTagBloomSeed:                "BloomSeed",
	DTagAnswerOriginKind:         "AnswerOriginKind",
	DTagInterestLifetime:         "InterestLifetime",
	DTagInterest:                 "Interest",
	DTagMinSuffixComponents:      "MinSuffixComponents",
	DTagMaxSuffixComponents:      "MaxSuffixComponents",
	DTagChildSelector:            "ChildSelector",
	DTagWitness:                  "Witness",
	DTagExtOpt:                   "ExtOpt",
	DTagLink:                     "Link",
	DTagLinkAuthenticator:        "LinkAuthenticator",
	DTagNACK:                     "NACK",
	DTagStatusResponse:           "StatusResponse",
	DTagStatusCode:               "StatusCode",
	DTagStatusText:               "StatusText",
	DTagSequenceNumber:           "SequenceNumber",
	DTagCollection:               "Collection",
	DTagCollectionEntry:          "CollectionEntry",
	DTagRootDigest:               "RootDigest",
	DTagSyncNode:                 "SyncNode",
	DTagSyncNodeElements:         "SyncNodeElements",
	DTagSyncNodeElementLeaf:      "SyncNodeElementLeaf",
	DTagSyncNodeElementProxy:     "SyncNodeElementProxy",
	DTagSyncNodeElementExtension: "SyncNodeElementExtension",
	DTagSyncNodeKind:             "SyncNodeKind",
	DTagSyncConfigSlice:          "SyncConfigSlice",
	DTagSyncVersion:              "SyncVersion",
	DTagTopologyPrefix:           "TopologyPrefix",
	DTagNamePrefix:               "NamePrefix",
	DTagSliceClause:              "SliceClause",
	DTagSyncContentHash:          "SyncContentHash",
}

// Name returns the dictionary name for tag, or "" if tag is unregistered.
func (tag DTag) Name() string { return dtagNames[tag] }
