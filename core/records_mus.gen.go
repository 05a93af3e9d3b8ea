// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	slice3I1QQCliEkWYkMdmXΣ0hHgΞΞ = ord.NewSliceSer[string](ord.String)
	slicemiO9vOLTPb07SNbXEIxIΔAΞΞ = ord.NewSliceSer[float32](varint.Float32)
)

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var DocumentKindMUS = documentKindMUS{}

type documentKindMUS struct{}

func (s documentKindMUS) Marshal(v DocumentKind, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s documentKindMUS) Unmarshal(bs []byte) (v DocumentKind, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = DocumentKind(tmp)
	return
}

func (s documentKindMUS) Size(v DocumentKind) (size int) {
	return varint.Int.Size(int(v))
}

func (s documentKindMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var SectionSourceMUS = sectionSourceMUS{}

type sectionSourceMUS struct{}

func (s sectionSourceMUS) Marshal(v SectionSource, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s sectionSourceMUS) Unmarshal(bs []byte) (v SectionSource, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = SectionSource(tmp)
	return
}

func (s sectionSourceMUS) Size(v SectionSource) (size int) {
	return varint.Int.Size(int(v))
}

func (s sectionSourceMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var ItemKindMUS = itemKindMUS{}

type itemKindMUS struct{}

func (s itemKindMUS) Marshal(v ItemKind, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s itemKindMUS) Unmarshal(bs []byte) (v ItemKind, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ItemKind(tmp)
	return
}

func (s itemKindMUS) Size(v ItemKind) (size int) {
	return varint.Int.Size(int(v))
}

func (s itemKindMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var ItemStatusMUS = itemStatusMUS{}

type itemStatusMUS struct{}

func (s itemStatusMUS) Marshal(v ItemStatus, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s itemStatusMUS) Unmarshal(bs []byte) (v ItemStatus, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ItemStatus(tmp)
	return
}

func (s itemStatusMUS) Size(v ItemStatus) (size int) {
	return varint.Int.Size(int(v))
}

func (s itemStatusMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var DraftStatusMUS = draftStatusMUS{}

type draftStatusMUS struct{}

func (s draftStatusMUS) Marshal(v DraftStatus, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s draftStatusMUS) Unmarshal(bs []byte) (v DraftStatus, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = DraftStatus(tmp)
	return
}

func (s draftStatusMUS) Size(v DraftStatus) (size int) {
	return varint.Int.Size(int(v))
}

func (s draftStatusMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var FeedbackTypeMUS = feedbackTypeMUS{}

type feedbackTypeMUS struct{}

func (s feedbackTypeMUS) Marshal(v FeedbackType, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s feedbackTypeMUS) Unmarshal(bs []byte) (v FeedbackType, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = FeedbackType(tmp)
	return
}

func (s feedbackTypeMUS) Size(v FeedbackType) (size int) {
	return varint.Int.Size(int(v))
}

func (s feedbackTypeMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var SeverityMUS = severityMUS{}

type severityMUS struct{}

func (s severityMUS) Marshal(v Severity, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s severityMUS) Unmarshal(bs []byte) (v Severity, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = Severity(tmp)
	return
}

func (s severityMUS) Size(v Severity) (size int) {
	return varint.Int.Size(int(v))
}

func (s severityMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var JobTypeMUS = jobTypeMUS{}

type jobTypeMUS struct{}

func (s jobTypeMUS) Marshal(v JobType, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s jobTypeMUS) Unmarshal(bs []byte) (v JobType, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = JobType(tmp)
	return
}

func (s jobTypeMUS) Size(v JobType) (size int) {
	return varint.Int.Size(int(v))
}

func (s jobTypeMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var JobStatusMUS = jobStatusMUS{}

type jobStatusMUS struct{}

func (s jobStatusMUS) Marshal(v JobStatus, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s jobStatusMUS) Unmarshal(bs []byte) (v JobStatus, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = JobStatus(tmp)
	return
}

func (s jobStatusMUS) Size(v JobStatus) (size int) {
	return varint.Int.Size(int(v))
}

func (s jobStatusMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var ChatRoleMUS = chatRoleMUS{}

type chatRoleMUS struct{}

func (s chatRoleMUS) Marshal(v ChatRole, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s chatRoleMUS) Unmarshal(bs []byte) (v ChatRole, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ChatRole(tmp)
	return
}

func (s chatRoleMUS) Size(v ChatRole) (size int) {
	return varint.Int.Size(int(v))
}

func (s chatRoleMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (s documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ProjectId, bs[n:])
	n += ord.String.Marshal(v.Filename, bs[n:])
	n += DocumentKindMUS.Marshal(v.Kind, bs[n:])
	n += ord.String.Marshal(v.MimeType, bs[n:])
	n += ord.String.Marshal(v.BlobName, bs[n:])
	n += ord.String.Marshal(v.ExtractedText, bs[n:])
	n += varint.Int.Marshal(v.PageCount, bs[n:])
	n += ord.Bool.Marshal(v.OcrUsed, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ProjectId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Kind, n1, err = DocumentKindMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.MimeType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.BlobName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ExtractedText, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PageCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.OcrUsed, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ProjectId)
	size += ord.String.Size(v.Filename)
	size += DocumentKindMUS.Size(v.Kind)
	size += ord.String.Size(v.MimeType)
	size += ord.String.Size(v.BlobName)
	size += ord.String.Size(v.ExtractedText)
	size += varint.Int.Size(v.PageCount)
	size += ord.Bool.Size(v.OcrUsed)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = DocumentKindMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var OutlineSectionMUS = outlineSectionMUS{}

type outlineSectionMUS struct{}

func (s outlineSectionMUS) Marshal(v OutlineSection, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ProjectId, bs[n:])
	n += IDMUS.Marshal(v.ParentId, bs[n:])
	n += varint.Int.Marshal(v.Position, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += SectionSourceMUS.Marshal(v.Source, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s outlineSectionMUS) Unmarshal(bs []byte) (v OutlineSection, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ProjectId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ParentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Position, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Description, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Source, n1, err = SectionSourceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s outlineSectionMUS) Size(v OutlineSection) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ProjectId)
	size += IDMUS.Size(v.ParentId)
	size += varint.Int.Size(v.Position)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Description)
	size += SectionSourceMUS.Size(v.Source)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s outlineSectionMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = SectionSourceMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var ExtractedItemMUS = extractedItemMUS{}

type extractedItemMUS struct{}

func (s extractedItemMUS) Marshal(v ExtractedItem, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ProjectId, bs[n:])
	n += IDMUS.Marshal(v.SectionId, bs[n:])
	n += ItemKindMUS.Marshal(v.Kind, bs[n:])
	n += ord.String.Marshal(v.OriginalText, bs[n:])
	n += ord.String.Marshal(v.SectionRef, bs[n:])
	n += IDMUS.Marshal(v.SourceDocumentId, bs[n:])
	n += varint.Int.Marshal(v.SourcePage, bs[n:])
	n += slice3I1QQCliEkWYkMdmXΣ0hHgΞΞ.Marshal(v.Themes, bs[n:])
	n += ord.Bool.Marshal(v.Addressed, bs[n:])
	n += ord.String.Marshal(v.ResponseText, bs[n:])
	n += ItemStatusMUS.Marshal(v.Status, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s extractedItemMUS) Unmarshal(bs []byte) (v ExtractedItem, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ProjectId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SectionId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Kind, n1, err = ItemKindMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.OriginalText, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SectionRef, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceDocumentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourcePage, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Themes, n1, err = slice3I1QQCliEkWYkMdmXΣ0hHgΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Addressed, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ResponseText, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status, n1, err = ItemStatusMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s extractedItemMUS) Size(v ExtractedItem) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ProjectId)
	size += IDMUS.Size(v.SectionId)
	size += ItemKindMUS.Size(v.Kind)
	size += ord.String.Size(v.OriginalText)
	size += ord.String.Size(v.SectionRef)
	size += IDMUS.Size(v.SourceDocumentId)
	size += varint.Int.Size(v.SourcePage)
	size += slice3I1QQCliEkWYkMdmXΣ0hHgΞΞ.Size(v.Themes)
	size += ord.Bool.Size(v.Addressed)
	size += ord.String.Size(v.ResponseText)
	size += ItemStatusMUS.Size(v.Status)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s extractedItemMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ItemKindMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slice3I1QQCliEkWYkMdmXΣ0hHgΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ItemStatusMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var DraftGroupMUS = draftGroupMUS{}

type draftGroupMUS struct{}

func (s draftGroupMUS) Marshal(v DraftGroup, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ProjectId, bs[n:])
	n += IDMUS.Marshal(v.SectionId, bs[n:])
	n += ord.String.Marshal(v.ModelId, bs[n:])
	n += ord.String.Marshal(v.SystemPrompt, bs[n:])
	n += ord.String.Marshal(v.GeneratedText, bs[n:])
	n += DraftStatusMUS.Marshal(v.Status, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s draftGroupMUS) Unmarshal(bs []byte) (v DraftGroup, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ProjectId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SectionId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ModelId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SystemPrompt, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.GeneratedText, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status, n1, err = DraftStatusMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s draftGroupMUS) Size(v DraftGroup) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ProjectId)
	size += IDMUS.Size(v.SectionId)
	size += ord.String.Size(v.ModelId)
	size += ord.String.Size(v.SystemPrompt)
	size += ord.String.Size(v.GeneratedText)
	size += DraftStatusMUS.Size(v.Status)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s draftGroupMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = DraftStatusMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var ResponseDraftMUS = responseDraftMUS{}

type responseDraftMUS struct{}

func (s responseDraftMUS) Marshal(v ResponseDraft, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.GroupId, bs[n:])
	n += varint.Int.Marshal(v.Version, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += ord.String.Marshal(v.ModelUsed, bs[n:])
	n += ord.String.Marshal(v.PromptUsed, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
}

func (s responseDraftMUS) Unmarshal(bs []byte) (v ResponseDraft, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.GroupId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Version, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ModelUsed, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PromptUsed, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s responseDraftMUS) Size(v ResponseDraft) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.GroupId)
	size += varint.Int.Size(v.Version)
	size += ord.String.Size(v.Content)
	size += ord.String.Size(v.ModelUsed)
	size += ord.String.Size(v.PromptUsed)
	return size + raw.TimeUnixMicro.Size(v.InsertedAt)
}

func (s responseDraftMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var DocumentChunkMUS = documentChunkMUS{}

type documentChunkMUS struct{}

func (s documentChunkMUS) Marshal(v DocumentChunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ProjectId, bs[n:])
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += ord.String.Marshal(v.SectionTitle, bs[n:])
	n += varint.Int.Marshal(v.StartChar, bs[n:])
	n += varint.Int.Marshal(v.EndChar, bs[n:])
	n += slicemiO9vOLTPb07SNbXEIxIΔAΞΞ.Marshal(v.Vector, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
}

func (s documentChunkMUS) Unmarshal(bs []byte) (v DocumentChunk, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ProjectId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DocumentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SectionTitle, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.StartChar, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EndChar, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = slicemiO9vOLTPb07SNbXEIxIΔAΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentChunkMUS) Size(v DocumentChunk) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ProjectId)
	size += IDMUS.Size(v.DocumentId)
	size += ord.String.Size(v.Content)
	size += ord.String.Size(v.SectionTitle)
	size += varint.Int.Size(v.StartChar)
	size += varint.Int.Size(v.EndChar)
	size += slicemiO9vOLTPb07SNbXEIxIΔAΞΞ.Size(v.Vector)
	return size + raw.TimeUnixMicro.Size(v.InsertedAt)
}

func (s documentChunkMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicemiO9vOLTPb07SNbXEIxIΔAΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var AnalysisFeedbackMUS = analysisFeedbackMUS{}

type analysisFeedbackMUS struct{}

func (s analysisFeedbackMUS) Marshal(v AnalysisFeedback, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ProjectId, bs[n:])
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += IDMUS.Marshal(v.ItemId, bs[n:])
	n += ord.String.Marshal(v.SectionRef, bs[n:])
	n += FeedbackTypeMUS.Marshal(v.Type, bs[n:])
	n += SeverityMUS.Marshal(v.Severity, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += ord.Bool.Marshal(v.Addressed, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
}

func (s analysisFeedbackMUS) Unmarshal(bs []byte) (v AnalysisFeedback, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ProjectId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DocumentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ItemId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SectionRef, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Type, n1, err = FeedbackTypeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Severity, n1, err = SeverityMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Addressed, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s analysisFeedbackMUS) Size(v AnalysisFeedback) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ProjectId)
	size += IDMUS.Size(v.DocumentId)
	size += IDMUS.Size(v.ItemId)
	size += ord.String.Size(v.SectionRef)
	size += FeedbackTypeMUS.Size(v.Type)
	size += SeverityMUS.Size(v.Severity)
	size += ord.String.Size(v.Content)
	size += ord.Bool.Size(v.Addressed)
	return size + raw.TimeUnixMicro.Size(v.InsertedAt)
}

func (s analysisFeedbackMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = FeedbackTypeMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = SeverityMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var JobProgressMUS = jobProgressMUS{}

type jobProgressMUS struct{}

func (s jobProgressMUS) Marshal(v JobProgress, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ProjectId, bs[n:])
	n += JobTypeMUS.Marshal(v.Type, bs[n:])
	n += JobStatusMUS.Marshal(v.Status, bs[n:])
	n += varint.Int.Marshal(v.Progress, bs[n:])
	n += ord.String.Marshal(v.Message, bs[n:])
	n += ord.String.Marshal(v.ErrorMessage, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.StartedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.CompletedAt, bs[n:])
}

func (s jobProgressMUS) Unmarshal(bs []byte) (v JobProgress, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ProjectId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Type, n1, err = JobTypeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status, n1, err = JobStatusMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Progress, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Message, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.StartedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CompletedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s jobProgressMUS) Size(v JobProgress) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ProjectId)
	size += JobTypeMUS.Size(v.Type)
	size += JobStatusMUS.Size(v.Status)
	size += varint.Int.Size(v.Progress)
	size += ord.String.Size(v.Message)
	size += ord.String.Size(v.ErrorMessage)
	size += raw.TimeUnixMicro.Size(v.StartedAt)
	return size + raw.TimeUnixMicro.Size(v.CompletedAt)
}

func (s jobProgressMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = JobTypeMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = JobStatusMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var ChatMessageMUS = chatMessageMUS{}

type chatMessageMUS struct{}

func (s chatMessageMUS) Marshal(v ChatMessage, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ProjectId, bs[n:])
	n += ChatRoleMUS.Marshal(v.Role, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += IDMUS.Marshal(v.ItemId, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
}

func (s chatMessageMUS) Unmarshal(bs []byte) (v ChatMessage, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ProjectId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Role, n1, err = ChatRoleMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ItemId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chatMessageMUS) Size(v ChatMessage) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ProjectId)
	size += ChatRoleMUS.Size(v.Role)
	size += ord.String.Size(v.Content)
	size += IDMUS.Size(v.ItemId)
	return size + raw.TimeUnixMicro.Size(v.InsertedAt)
}

func (s chatMessageMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ChatRoleMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}
