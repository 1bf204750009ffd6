package shopify

// ProductUpdateMutation creates or updates metafields on a product.
// Inputs with an id update that metafield, inputs with key/namespace create one.
const ProductUpdateMutation = `
mutation productUpdate($input: ProductInput!) {
  productUpdate(input: $input) {
    product {
      id
    }
    userErrors {
      field
      message
    }
  }
}
`

// MetafieldDeleteMutation deletes one metafield by id
const MetafieldDeleteMutation = `
mutation metafieldDelete($input: MetafieldDeleteInput!) {
  metafieldDelete(input: $input) {
    deletedId
    userErrors {
      field
      message
    }
  }
}
`

// WebhookSubscriptionCreateMutation registers a JSON webhook
const WebhookSubscriptionCreateMutation = `
mutation webhookSubscriptionCreate($topic: WebhookSubscriptionTopic!, $callbackUrl: URL!) {
  webhookSubscriptionCreate(topic: $topic, webhookSubscription: { callbackUrl: $callbackUrl, format: JSON }) {
    webhookSubscription {
      id
    }
    userErrors {
      field
      message
    }
  }
}
`
