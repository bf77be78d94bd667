package app

// OpenAPISpec is the OpenAPI 3.0 definition served by the swagger handler.
var OpenAPISpec = []byte(`openapi: "3.0.3"
info:
  title: Market Inbox API
  description: Admin message viewer for marketplace user conversations
  version: "1.0.0"
servers:
  - url: /api/v1
paths:
  /viewers:
    post:
      summary: Open a viewer session for a marketplace user
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [subject_id]
              properties:
                subject_id:
                  type: string
      responses:
        "201":
          description: Viewer session created
          content:
            application/json:
              schema:
                type: object
                properties:
                  viewer_id:
                    type: string
                  subject_id:
                    type: string
        "400":
          description: Missing subject_id
  /viewers/{viewerId}:
    delete:
      summary: Close a viewer session and stop its polling
      parameters:
        - $ref: "#/components/parameters/viewerId"
      responses:
        "204":
          description: Session closed
        "404":
          description: Unknown viewer
  /viewers/{viewerId}/inbox:
    get:
      summary: Current conversation list for the session subject
      parameters:
        - $ref: "#/components/parameters/viewerId"
      responses:
        "200":
          description: Conversation summaries sorted by recency
          content:
            application/json:
              schema:
                type: object
                properties:
                  conversations:
                    type: array
                    items:
                      $ref: "#/components/schemas/ConversationSummary"
                  selected_id:
                    type: string
        "404":
          description: Unknown viewer
  /viewers/{viewerId}/transcript:
    get:
      summary: Transcript of the selected conversation grouped by day
      parameters:
        - $ref: "#/components/parameters/viewerId"
      responses:
        "200":
          description: Day groups in chronological order
          content:
            application/json:
              schema:
                type: object
                properties:
                  counterpart_id:
                    type: string
                  groups:
                    type: array
                    items:
                      $ref: "#/components/schemas/DayGroup"
        "404":
          description: Unknown viewer or no conversation selected
  /viewers/{viewerId}/status:
    get:
      summary: Loading and error state of the session fetch loops
      parameters:
        - $ref: "#/components/parameters/viewerId"
      responses:
        "200":
          description: Per-fetch status
        "404":
          description: Unknown viewer
  /viewers/{viewerId}/select:
    post:
      summary: Select a conversation by counterpart id
      parameters:
        - $ref: "#/components/parameters/viewerId"
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [counterpart_id]
              properties:
                counterpart_id:
                  type: string
      responses:
        "204":
          description: Selection applied
        "400":
          description: Missing counterpart_id
        "404":
          description: Unknown viewer
  /viewers/{viewerId}/refresh:
    post:
      summary: Trigger an immediate out-of-band refresh
      parameters:
        - $ref: "#/components/parameters/viewerId"
      responses:
        "204":
          description: Refresh started
        "404":
          description: Unknown viewer
  /statistics:
    get:
      summary: Messaging statistics from the event archive
      parameters:
        - $ref: "#/components/parameters/subjectId"
        - $ref: "#/components/parameters/startDate"
        - $ref: "#/components/parameters/endDate"
      responses:
        "200":
          description: Aggregated totals for the period
        "400":
          description: Invalid filter
        "503":
          description: Archive disabled
  /heatmap:
    get:
      summary: Message volume by weekday and hour
      parameters:
        - $ref: "#/components/parameters/subjectId"
        - $ref: "#/components/parameters/startDate"
        - $ref: "#/components/parameters/endDate"
      responses:
        "200":
          description: Heatmap cells
        "400":
          description: Invalid filter
        "503":
          description: Archive disabled
components:
  parameters:
    viewerId:
      name: viewerId
      in: path
      required: true
      schema:
        type: string
    subjectId:
      name: subject_id
      in: query
      required: true
      schema:
        type: string
    startDate:
      name: start_date
      in: query
      schema:
        type: string
        format: date
    endDate:
      name: end_date
      in: query
      schema:
        type: string
        format: date
  schemas:
    ConversationSummary:
      type: object
      properties:
        counterpart:
          type: object
          properties:
            id:
              type: string
            display_name:
              type: string
            avatar_url:
              type: string
            role_label:
              type: string
            contact_email:
              type: string
        last_message_text:
          type: string
        last_message_at:
          type: string
          format: date-time
        last_message_label:
          type: string
        is_last_from_subject:
          type: boolean
        unread_count:
          type: integer
    DayGroup:
      type: object
      properties:
        date_key:
          type: string
        header_label:
          type: string
        messages:
          type: array
          items:
            type: object
            properties:
              id:
                type: string
              text:
                type: string
              is_from_subject:
                type: boolean
              display_time:
                type: string
              is_read:
                type: boolean
`)
